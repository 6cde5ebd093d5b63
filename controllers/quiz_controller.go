package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LonelyOmen/retrolearn/config"
	"github.com/LonelyOmen/retrolearn/models"
	"github.com/LonelyOmen/retrolearn/services"
)

type GenerateQuizRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Topic       string `json:"topic" binding:"required"`
}

// GenerateQuiz sinh quiz 10 câu trắc nghiệm từ topic bằng Gemini
func GenerateQuiz(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and topic are required"})
		return
	}

	quiz, err := quizGenerator.Generate(c.Request.Context(), services.GenerateQuizInput{
		Title:       req.Title,
		Description: req.Description,
		Topic:       req.Topic,
		CreatorID:   userID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"quiz_id": quiz.ID,
		"message": "Quiz generated successfully",
	})
}

// Danh sách quiz public + quiz của chính user (có search, phân trang)
func GetQuizzes(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	query := config.DB.Model(&models.Quiz{}).
		Where("is_public = ? OR creator_id = ?", true, userID)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%") // Postgres
	}

	// --- Phân trang ---
	page := 1
	limit := 10
	if p := c.Query("page"); p != "" {
		if val, err := strconv.Atoi(p); err == nil && val > 0 {
			page = val
		}
	}
	if l := c.Query("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}
	offset := (page - 1) * limit

	var total int64
	query.Count(&total)

	var quizzes []models.Quiz
	if err := query.Limit(limit).Offset(offset).Order("created_at desc").Find(&quizzes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quizzes": quizzes,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// Chi tiết quiz kèm câu hỏi theo thứ tự question_number
func GetQuizDetail(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var quiz models.Quiz
	if err := config.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number ASC")
		}).
		First(&quiz, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy quiz"})
		return
	}

	if !quiz.IsPublic && quiz.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Quiz này không công khai"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz": quiz})
}

// Xoá quiz (chỉ creator)
func DeleteQuiz(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	result := config.DB.Where("id = ? AND creator_id = ?", c.Param("id"), userID).Delete(&models.Quiz{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xoá quiz"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã xoá quiz"})
}

// Bật/tắt public cho quiz (chỉ creator)
func ToggleQuizVisibility(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var quiz models.Quiz
	if err := config.DB.First(&quiz, "id = ? AND creator_id = ?", c.Param("id"), userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy quiz"})
		return
	}

	if err := config.DB.Model(&quiz).Update("is_public", !quiz.IsPublic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không cập nhật được quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz_id": quiz.ID, "is_public": !quiz.IsPublic})
}

type SubmitAttemptRequest struct {
	// map question_id -> đáp án đã chọn (A/B/C/D)
	Answers map[string]string `json:"answers" binding:"required"`
}

// Nộp bài quiz: chấm điểm theo phần trăm câu đúng, lưu lịch sử attempt
func SubmitQuizAttempt(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quiz id không hợp lệ"})
		return
	}

	var questions []models.QuizQuestion
	if err := config.DB.Where("quiz_id = ?", quizID).
		Order("question_number ASC").Find(&questions).Error; err != nil || len(questions) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy quiz"})
		return
	}

	correct := 0
	results := make([]gin.H, 0, len(questions))
	for _, q := range questions {
		chosen := req.Answers[q.ID.String()]
		isCorrect := chosen == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		results = append(results, gin.H{
			"question_id":    q.ID,
			"chosen":         chosen,
			"correct_answer": q.CorrectAnswer,
			"is_correct":     isCorrect,
		})
	}

	score := float64(correct) / float64(len(questions)) * 100

	attempt := models.QuizAttempt{
		QuizID: quizID,
		UserID: userID,
		Score:  score,
	}
	if err := config.DB.Create(&attempt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được kết quả"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempt_id": attempt.ID,
		"score":      score,
		"correct":    correct,
		"total":      len(questions),
		"results":    results,
	})
}
