package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/internal/dto"
)

// MockOrganizerService is a mock implementation of OrganizerService
type MockOrganizerService struct {
	mock.Mock
}

func (m *MockOrganizerService) Authorize(ctx context.Context, adminAddress string, req *dto.AuthorizeOrganizerRequest) (*dto.OrganizerResponse, error) {
	args := m.Called(ctx, adminAddress, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.OrganizerResponse), args.Error(1)
}

func (m *MockOrganizerService) GetOrganizer(ctx context.Context, address string) (*dto.OrganizerResponse, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.OrganizerResponse), args.Error(1)
}

const handlerTestAdmin = "0x9999999999999999999999999999999999999999"

func setupOrganizerTestRouter(h *OrganizerHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(callerMiddleware())

	v1 := router.Group("/api/v1")
	{
		v1.POST("/organizers/authorize", h.Authorize)
		v1.GET("/organizers/:address", h.GetOrganizer)
	}
	return router
}

func TestOrganizerHandler_Authorize_Success(t *testing.T) {
	mockService := new(MockOrganizerService)
	router := setupOrganizerTestRouter(NewOrganizerHandler(mockService))

	expected := &dto.OrganizerResponse{
		Address:      handlerTestOrganizer,
		AuthorizedBy: handlerTestAdmin,
	}
	mockService.On("Authorize", mock.Anything, handlerTestAdmin, mock.AnythingOfType("*dto.AuthorizeOrganizerRequest")).Return(expected, nil)

	body, _ := json.Marshal(dto.AuthorizeOrganizerRequest{Address: handlerTestOrganizer})
	req, _ := http.NewRequest("POST", "/api/v1/organizers/authorize", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Caller", handlerTestAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data dto.OrganizerResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, handlerTestOrganizer, resp.Data.Address)
	mockService.AssertExpectations(t)
}

func TestOrganizerHandler_Authorize_Unauthenticated(t *testing.T) {
	mockService := new(MockOrganizerService)
	router := setupOrganizerTestRouter(NewOrganizerHandler(mockService))

	body, _ := json.Marshal(dto.AuthorizeOrganizerRequest{Address: handlerTestOrganizer})
	req, _ := http.NewRequest("POST", "/api/v1/organizers/authorize", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Authorize")
}

func TestOrganizerHandler_Authorize_InvalidAddress(t *testing.T) {
	mockService := new(MockOrganizerService)
	router := setupOrganizerTestRouter(NewOrganizerHandler(mockService))

	mockService.On("Authorize", mock.Anything, handlerTestAdmin, mock.Anything).Return(nil, domain.ErrInvalidAddress)

	body, _ := json.Marshal(dto.AuthorizeOrganizerRequest{Address: "not-an-address"})
	req, _ := http.NewRequest("POST", "/api/v1/organizers/authorize", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Caller", handlerTestAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrganizerHandler_GetOrganizer(t *testing.T) {
	mockService := new(MockOrganizerService)
	router := setupOrganizerTestRouter(NewOrganizerHandler(mockService))

	t.Run("found", func(t *testing.T) {
		mockService.On("GetOrganizer", mock.Anything, handlerTestOrganizer).Return(&dto.OrganizerResponse{
			Address:      handlerTestOrganizer,
			AuthorizedBy: handlerTestAdmin,
		}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/v1/organizers/"+handlerTestOrganizer, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockService.On("GetOrganizer", mock.Anything, mock.Anything).Return(nil, domain.ErrOrganizerNotFound).Once()

		req, _ := http.NewRequest("GET", "/api/v1/organizers/0x0000000000000000000000000000000000000000", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
