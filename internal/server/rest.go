package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"feastfox/internal/dinner"
	"feastfox/internal/models"
)

func (s *FeastFoxServer) registerRoutes(r *gin.Engine) {
	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)

	d := r.Group("/api/dinner")
	{
		d.GET("/decision", s.handleDecision)
		d.GET("/cuisines", s.handleCuisines)
		d.GET("/meals", s.handleAllMeals)
	}

	m := r.Group("/api/meals")
	{
		m.GET("", s.handleListMeals)
		m.POST("", s.handleCreateMeal)
		m.GET("/:id", s.handleGetMeal)
		m.PUT("/:id", s.handleUpdateMeal)
		m.DELETE("/:id", s.handleDeleteMeal)
	}

	r.POST("/mcp", s.handleMCP)
	r.GET("/ws/meals", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request)
	})
}

func (s *FeastFoxServer) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "FeastFox API",
		"version":     serviceVersion,
		"description": "The clever dinner decider app backend",
		"endpoints": gin.H{
			"health":          "/health",
			"dinner_decision": "/api/dinner/decision",
			"meals":           "/api/meals",
			"mcp":             "/mcp",
			"changes":         "/ws/meals",
		},
	})
}

func (s *FeastFoxServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
}

func (s *FeastFoxServer) handleDecision(c *gin.Context) {
	decision, err := dinner.Decide(c.Request.Context(), s.store)
	if errors.Is(err, models.ErrNoMeals) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No meals available"})
		return
	}
	if err != nil {
		s.internalError(c, "decide dinner", err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

func (s *FeastFoxServer) handleCuisines(c *gin.Context) {
	cuisines, err := dinner.Cuisines(c.Request.Context(), s.store)
	if err != nil {
		s.internalError(c, "list cuisines", err)
		return
	}
	c.JSON(http.StatusOK, cuisines)
}

// handleAllMeals serves the older {meals, count} envelope.
func (s *FeastFoxServer) handleAllMeals(c *gin.Context) {
	meals, err := s.store.List(c.Request.Context())
	if err != nil {
		s.internalError(c, "list meals", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals, "count": len(meals)})
}

func (s *FeastFoxServer) handleListMeals(c *gin.Context) {
	meals, err := s.store.List(c.Request.Context())
	if err != nil {
		s.internalError(c, "list meals", err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (s *FeastFoxServer) handleGetMeal(c *gin.Context) {
	meal, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if s.writeStoreError(c, "get meal", err) {
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (s *FeastFoxServer) handleCreateMeal(c *gin.Context) {
	var in models.MealCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := s.store.Create(c.Request.Context(), in)
	if err != nil {
		s.internalError(c, "create meal", err)
		return
	}
	s.publish(models.OpCreate, meal.ID)
	c.JSON(http.StatusCreated, meal)
}

func (s *FeastFoxServer) handleUpdateMeal(c *gin.Context) {
	var in models.MealCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	meal, err := s.store.Update(c.Request.Context(), id, in)
	if s.writeStoreError(c, "update meal", err) {
		return
	}
	s.publish(models.OpUpdate, id)
	c.JSON(http.StatusOK, meal)
}

func (s *FeastFoxServer) handleDeleteMeal(c *gin.Context) {
	id := c.Param("id")
	err := s.store.Delete(c.Request.Context(), id)
	if s.writeStoreError(c, "delete meal", err) {
		return
	}
	s.publish(models.OpDelete, id)
	c.Status(http.StatusNoContent)
}

func (s *FeastFoxServer) publish(op models.ChangeOp, id string) {
	s.hub.Publish(models.ChangeEvent{Kind: models.KindMealsChanged, Op: op, ID: id})
}

// writeStoreError answers err, if any, and reports whether it did.
func (s *FeastFoxServer) writeStoreError(c *gin.Context, op string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, models.ErrMealNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
	default:
		s.internalError(c, op, err)
	}
	return true
}

func (s *FeastFoxServer) internalError(c *gin.Context, op string, err error) {
	log.Error().Err(err).Str("op", op).Msg("store operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
