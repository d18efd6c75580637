package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lorryops/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShiftService is a mock implementation of ShiftService.
type MockShiftService struct {
	mock.Mock
}

func (m *MockShiftService) ClockIn(ctx context.Context, driverID uuid.UUID, at time.Time) (*model.DriverShift, error) {
	args := m.Called(ctx, driverID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DriverShift), args.Error(1)
}

func (m *MockShiftService) ClockOut(ctx context.Context, shiftID uuid.UUID, at time.Time) (*model.DriverShift, error) {
	args := m.Called(ctx, shiftID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DriverShift), args.Error(1)
}

func (m *MockShiftService) CloseStaleShifts(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func TestShiftHandler_ClockIn(t *testing.T) {
	logger := zerolog.Nop()

	driverID := uuid.New()
	shift := &model.DriverShift{
		ID:       uuid.New(),
		DriverID: driverID,
		Status:   model.ShiftStatusOpen,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockReturn     *model.DriverShift
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			requestBody:    &model.ClockInRequest{DriverID: driverID},
			mockReturn:     shift,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Driver already clocked in",
			requestBody:    &model.ClockInRequest{DriverID: driverID},
			mockError:      model.ErrShiftAlreadyOpen,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Missing driver ID",
			requestBody:    &model.ClockInRequest{},
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockShiftService)
			handler := NewShiftHandler(mockService, logger)

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			if tt.expectService {
				mockService.On("ClockIn", mock.Anything, driverID, mock.AnythingOfType("time.Time")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/shifts", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ClockIn(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestShiftHandler_ClockOut(t *testing.T) {
	logger := zerolog.Nop()

	shiftID := uuid.New()
	clockOut := time.Now().UTC()
	completed := &model.DriverShift{
		ID:         shiftID,
		ClockOutAt: &clockOut,
		Status:     model.ShiftStatusCompleted,
	}

	tests := []struct {
		name           string
		shiftIDStr     string
		mockReturn     *model.DriverShift
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			shiftIDStr:     shiftID.String(),
			mockReturn:     completed,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Shift not open",
			shiftIDStr:     shiftID.String(),
			mockError:      model.ErrShiftNotOpen,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Invalid UUID format",
			shiftIDStr:     "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockShiftService)
			handler := NewShiftHandler(mockService, logger)

			if tt.expectService {
				mockService.On("ClockOut", mock.Anything, shiftID, mock.AnythingOfType("time.Time")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/shifts/"+tt.shiftIDStr+"/clock-out", nil)
			w := httptest.NewRecorder()

			handler.ClockOut(w, req, tt.shiftIDStr)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}
