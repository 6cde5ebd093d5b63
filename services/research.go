package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/LonelyOmen/retrolearn/config"
)

// Research chỉ lấy tối đa 2 topic — bước enrich cố ý làm nông
const maxResearchTopics = 2

// TopicOutcome ghi lại kết quả research của từng topic. Topic fail không
// chặn topic khác; Skipped + Reason cho biết vì sao topic không đóng góp.
type TopicOutcome struct {
	Topic   string
	Answer  string
	Skipped bool
	Reason  string
}

// Researcher thực hiện bước enrich best-effort: trích topic từ ghi chú
// rồi tra cứu song song qua search API. Mọi lỗi ở đây đều không fatal
// với pipeline — tệ nhất là context rỗng.
type Researcher struct {
	cfg    config.AIConfig
	gen    ContentGenerator
	search TopicSearcher
}

func NewResearcher(cfg config.AIConfig, gen ContentGenerator, search TopicSearcher) *Researcher {
	return &Researcher{cfg: cfg, gen: gen, search: search}
}

// Enrich trả về chuỗi research context (có thể rỗng) và outcome từng topic.
func (r *Researcher) Enrich(ctx context.Context, content string) (string, []TopicOutcome) {
	topics, err := r.extractTopics(ctx, content)
	if err != nil {
		log.Println("Trích topic research thất bại, bỏ qua enrich:", err)
		return "", nil
	}
	if len(topics) == 0 {
		return "", nil
	}

	outcomes := make([]TopicOutcome, len(topics))
	var wg sync.WaitGroup
	for i, topic := range topics {
		wg.Add(1)
		go func(i int, topic string) {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, r.cfg.SearchCallTimeout)
			defer cancel()

			answer, err := r.search.Search(sctx, topic)
			if err != nil {
				log.Printf("Tavily lỗi cho topic %q: %v\n", topic, err)
				outcomes[i] = TopicOutcome{Topic: topic, Skipped: true, Reason: err.Error()}
				return
			}
			if strings.TrimSpace(answer) == "" {
				outcomes[i] = TopicOutcome{Topic: topic, Skipped: true, Reason: "không có answer tổng hợp"}
				return
			}
			outcomes[i] = TopicOutcome{Topic: topic, Answer: answer}
		}(i, topic)
	}
	wg.Wait()

	var sb strings.Builder
	for _, o := range outcomes {
		if o.Skipped {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n\n## Research on \"%s\":\n%s", o.Topic, o.Answer))
	}
	return sb.String(), outcomes
}

func (r *Researcher) extractTopics(ctx context.Context, content string) ([]string, error) {
	lctx, cancel := context.WithTimeout(ctx, r.cfg.LLMCallTimeout)
	defer cancel()

	prompt := fmt.Sprintf("Extract 2-3 key research topics from the provided notes. Return only the topics, one per line.\n\nNotes: %s", content)
	resp, err := r.gen.Generate(lctx, r.cfg.GeminiAPIKey, r.cfg.LightModel, GenerateRequest{
		Prompt:          prompt,
		Temperature:     0.3,
		MaxOutputTokens: 150,
	})
	if err != nil {
		return nil, err
	}

	var topics []string
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		topics = append(topics, line)
		if len(topics) == maxResearchTopics {
			break
		}
	}
	return topics, nil
}
