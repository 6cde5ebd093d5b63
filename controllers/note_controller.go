package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/LonelyOmen/retrolearn/config"
	"github.com/LonelyOmen/retrolearn/models"
	"github.com/LonelyOmen/retrolearn/services"
	"github.com/LonelyOmen/retrolearn/utils"
)

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Tạo ghi chú mới ở trạng thái pending, chờ client gọi process-notes
func CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	note := models.Note{
		UserID:           userID,
		Title:            req.Title,
		OriginalContent:  req.Content,
		ProcessingStatus: models.StatusPending,
	}

	if err := config.DB.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo ghi chú"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// Lấy danh sách ghi chú của user, lọc theo trạng thái nếu có
func GetNotes(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	query := config.DB.Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("processing_status = ?", status)
	}

	var notes []models.Note
	if err := query.Order("created_at DESC").Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy ghi chú"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func GetNoteDetail(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"note": note})
}

// Xoá ghi chú (chỉ xoá nếu đúng user)
func DeleteNote(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Delete(&models.Note{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xoá ghi chú"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã xoá ghi chú"})
}

// Upload ảnh ghi chú lên Supabase Storage, trả public URL
func UploadNoteImage(c *gin.Context) {
	if _, err := currentUserID(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file ảnh"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File phải là ảnh"})
		return
	}

	url, err := utils.UploadImageToSupabase(fileHeader, uuid.New().String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload ảnh thất bại"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Nhập tài liệu PDF/DOCX thành ghi chú pending
func ImportDocument(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file tài liệu"})
		return
	}

	var text string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".pdf":
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không đọc được file"})
			return
		}
		defer file.Close()
		text, err = services.ExtractTextFromPDF(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không trích được text từ PDF"})
			return
		}
	case ".docx":
		text, err = services.ExtractTextFromDOCX(fileHeader)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không trích được text từ DOCX"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chỉ hỗ trợ PDF hoặc DOCX"})
		return
	}

	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tài liệu không có nội dung text"})
		return
	}

	note := models.Note{
		UserID:           userID,
		Title:            fileHeader.Filename,
		OriginalContent:  text,
		ProcessingStatus: models.StatusPending,
	}
	if err := config.DB.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo ghi chú"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": note})
}
