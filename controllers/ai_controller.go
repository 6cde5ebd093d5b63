package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LonelyOmen/retrolearn/config"
	"github.com/LonelyOmen/retrolearn/models"
	"github.com/LonelyOmen/retrolearn/services"
	"github.com/LonelyOmen/retrolearn/utils"
	"github.com/LonelyOmen/retrolearn/ws"
)

// Các service AI khởi tạo một lần từ main, bất biến sau đó
var (
	aiCfg         config.AIConfig
	noteProcessor *services.NoteProcessor
	quizGenerator *services.QuizGenerator
	textExtractor *services.TextExtractor
	transcriber   *services.Transcriber
)

func InitAI(cfg config.AIConfig, db *gorm.DB) {
	aiCfg = cfg
	gen := services.GeminiGenerator{}

	var researcher *services.Researcher
	if cfg.TavilyAPIKey != "" {
		researcher = services.NewResearcher(cfg, gen, services.NewTavilyClient(cfg.TavilyAPIKey))
	}

	noteProcessor = services.NewNoteProcessor(cfg, gen, &services.GormNoteStore{DB: db}, researcher)
	quizGenerator = services.NewQuizGenerator(cfg, gen, &services.GormQuizStore{DB: db})
	textExtractor = services.NewTextExtractor(cfg, gen)
	transcriber = services.NewTranscriber(cfg)
}

// ProcessNotes chạy pipeline sinh tài liệu học tập cho một ghi chú.
// Response giữ nguyên contract cũ: success / error / code / provider_status.
func ProcessNotes(c *gin.Context) {
	var req services.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ws.SendNoteStatusUpdate(req.NoteID, string(models.StatusProcessing), "")

	result, perr := noteProcessor.Process(c.Request.Context(), req)
	if perr != nil {
		switch perr.Code {
		case services.CodeInvalidInput:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": perr.Message})
		case services.CodeGeminiQuota:
			ws.SendNoteStatusUpdate(req.NoteID, string(models.StatusError), perr.Message)
			// Chuỗi fallback cạn vì quota: trả 200 kèm mã lỗi, client tự
			// hiển thị "thử lại sau" thay vì màn hình lỗi hệ thống
			c.JSON(http.StatusOK, gin.H{
				"success":         false,
				"error":           perr.Message,
				"code":            perr.Code,
				"provider_status": perr.ProviderStatus,
			})
		default:
			ws.SendNoteStatusUpdate(req.NoteID, string(models.StatusError), perr.Message)
			body := gin.H{
				"success": false,
				"error":   perr.Message,
				"code":    perr.Code,
			}
			if perr.ProviderStatus != 0 {
				body["provider_status"] = perr.ProviderStatus
			}
			c.JSON(http.StatusInternalServerError, body)
		}
		return
	}

	ws.SendNoteStatusUpdate(req.NoteID, string(models.StatusCompleted), "")
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"note":                 result.Note,
		"enhancedWithInternet": result.EnhancedWithInternet,
	})
}

type ExtractTextRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
}

// ExtractText đọc chữ trong ảnh (OCR qua model vision)
func ExtractText(c *gin.Context) {
	var req ExtractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	text, err := textExtractor.Extract(c.Request.Context(), req.Image, req.MimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "extractedText": text})
}

// TranscribeAudio chuyển giọng nói thành text (ghi chú bằng giọng nói)
func TranscribeAudio(c *gin.Context) {
	audio, err := c.GetRawData()
	if err != nil || len(audio) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu dữ liệu audio"})
		return
	}

	text, err := transcriber.Transcribe(c.Request.Context(), audio)
	if err != nil {
		if err == services.ErrTranscribeQuota {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error(), "isQuotaError": true})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "isQuotaError": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

// GetNoteAudio đọc summary thành audio MP3 (tạo một lần, cache URL)
func GetNoteAudio(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var note models.Note
	if err := config.DB.First(&note, "id = ? AND user_id = ?", c.Param("id"), userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy ghi chú"})
		return
	}

	if note.ProcessingStatus != models.StatusCompleted || note.Summary == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ghi chú chưa có summary để đọc"})
		return
	}

	if note.AudioURL != nil {
		c.JSON(http.StatusOK, gin.H{"url": *note.AudioURL, "duration": note.AudioDuration})
		return
	}

	audio, err := services.SynthesizeSummary(c.Request.Context(), aiCfg.GoogleCredentialsFile, *note.Summary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không tạo được audio"})
		return
	}

	url, err := utils.UploadBytesToSupabase(audio, note.ID.String()+".mp3", "audio/mpeg")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload audio thất bại"})
		return
	}

	duration, err := services.GetMP3Duration(audio)
	if err != nil {
		duration = 0
	}

	updates := map[string]interface{}{"audio_url": url, "audio_duration": duration}
	if err := config.DB.Model(&note).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được audio URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "duration": duration})
}
