package routes

import (
	"net/http"
	"time"

	"ncpa-assist/internal/logger"
	"ncpa-assist/middleware"
	"ncpa-assist/services"
	"ncpa-assist/utils"

	"github.com/gin-gonic/gin"
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
	Language string `json:"language"`
}

// AskResponse mirrors services.Answer for the wire.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Urgent  bool     `json:"urgent"`
	Cached  bool     `json:"cached"`
}

// SetupRoutes registers the query surface on the router.
func SetupRoutes(router *gin.Engine, answers *services.AnswerService) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	router.POST("/ask", func(c *gin.Context) {
		var req AskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if req.Language == "" {
			req.Language = "en"
		}

		answer, err := answers.Answer(c.Request.Context(), req.Question, req.Language)
		if err != nil {
			logger.Error("failed to answer question",
				"request_id", middleware.GetRequestID(c), "error", err)
			utils.RespondWithInternalError(c, "Failed to answer question", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, AskResponse{
			Answer:  answer.Text,
			Sources: answer.Sources,
			Urgent:  answer.Urgent,
			Cached:  answer.Cached,
		})
	})
}
