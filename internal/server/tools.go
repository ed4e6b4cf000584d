// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"feastfox/internal/dinner"
	"feastfox/internal/models"
)

var errInvalidParams = errors.New("invalid parameters")

type MealParams struct {
	Meal    string `json:"meal" description:"Name of the meal"`
	Cuisine string `json:"cuisine" description:"Cuisine the meal belongs to"`
	Reason  string `json:"reason" description:"Why this meal is a good pick"`
}

type UpdateMealParams struct {
	ID string `json:"id" description:"Id of the meal to replace"`
	MealParams
}

type DeleteMealParams struct {
	ID string `json:"id" description:"Id of the meal to delete"`
}

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// tools maps MCP tool names to their handlers.
func (s *FeastFoxServer) tools() map[string]toolHandler {
	return map[string]toolHandler{
		"decide_dinner": s.handleDecideDinner,
		"list_meals":    s.handleListMealsTool,
		"list_cuisines": s.handleListCuisinesTool,
		"create_meal":   s.handleCreateMealTool,
		"update_meal":   s.handleUpdateMealTool,
		"delete_meal":   s.handleDeleteMealTool,
	}
}

func (s *FeastFoxServer) handleMCP(c *gin.Context) {
	var request protocol.CallToolRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid JSON: %v", err)})
		return
	}

	handler, ok := s.tools()[request.Name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Unknown tool: %s", request.Name)})
		return
	}

	result, err := handler(c.Request.Context(), &request)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, errInvalidParams):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrMealNotFound), errors.Is(err, models.ErrNoMeals):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("tool", request.Name).Msg("tool call failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// extractParams converts the request arguments into target.
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	return nil
}

func (s *FeastFoxServer) handleDecideDinner(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	decision, err := dinner.Decide(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to decide dinner: %w", err)
	}
	return s.createJSONResponse(decision)
}

func (s *FeastFoxServer) handleListMealsTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	meals, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve meals: %w", err)
	}
	return s.createJSONResponse(meals)
}

func (s *FeastFoxServer) handleListCuisinesTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	cuisines, err := dinner.Cuisines(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to list cuisines: %w", err)
	}
	return s.createJSONResponse(cuisines)
}

func (s *FeastFoxServer) handleCreateMealTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params MealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	meal, err := s.store.Create(ctx, models.MealCreate(params))
	if err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}
	s.publish(models.OpCreate, meal.ID)
	return s.createJSONResponse(meal)
}

func (s *FeastFoxServer) handleUpdateMealTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params UpdateMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, fmt.Errorf("%w: meal id is required", errInvalidParams)
	}

	meal, err := s.store.Update(ctx, params.ID, models.MealCreate(params.MealParams))
	if err != nil {
		return nil, fmt.Errorf("failed to update meal: %w", err)
	}
	s.publish(models.OpUpdate, meal.ID)
	return s.createJSONResponse(meal)
}

func (s *FeastFoxServer) handleDeleteMealTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DeleteMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, fmt.Errorf("%w: meal id is required", errInvalidParams)
	}

	if err := s.store.Delete(ctx, params.ID); err != nil {
		return nil, fmt.Errorf("failed to delete meal: %w", err)
	}
	s.publish(models.OpDelete, params.ID)
	return s.createJSONResponse(map[string]interface{}{"deleted": true, "id": params.ID})
}

func (s *FeastFoxServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
