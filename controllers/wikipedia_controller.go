package controllers

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

var wikiHTTPClient = &http.Client{Timeout: 15 * time.Second}

type WikipediaRequest struct {
	Action string `json:"action" binding:"required"` // search | summary
	Query  string `json:"query"`
	Title  string `json:"title"`
}

// WikipediaProxy gọi Wikipedia API hộ client để tránh CORS phía browser.
// Trả nguyên body JSON của Wikipedia.
func WikipediaProxy(c *gin.Context) {
	var req WikipediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var target string
	switch req.Action {
	case "search":
		if req.Query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu query"})
			return
		}
		target = "https://en.wikipedia.org/w/api.php?action=query&list=search&format=json&origin=*&srlimit=5&srsearch=" +
			url.QueryEscape(req.Query)
	case "summary":
		if req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu title"})
			return
		}
		target = "https://en.wikipedia.org/api/rest_v1/page/summary/" + url.PathEscape(req.Title)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action phải là search hoặc summary"})
		return
	}

	httpReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không tạo được request"})
		return
	}
	httpReq.Header.Set("User-Agent", "retrolearn/1.0")

	resp, err := wikiHTTPClient.Do(httpReq)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Wikipedia không phản hồi"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Không đọc được phản hồi từ Wikipedia"})
		return
	}

	c.Data(resp.StatusCode, "application/json", body)
}
