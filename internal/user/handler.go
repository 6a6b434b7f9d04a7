package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"snacket-be/internal/logger"
	"snacket-be/internal/utils"

	"go.uber.org/zap"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" || req.Password == "" {
		utils.WriteJSONError(w, http.StatusBadRequest, utils.CodeInvalidArgument, "phone and password required")
		return
	}

	token, err := h.svc.Login(r.Context(), req.Phone, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		utils.WriteJSONError(w, http.StatusUnauthorized, utils.CodeUnauthenticated, err.Error())
		return
	}
	if err != nil {
		logger.FromCtx(r.Context()).Error("login failed", zap.Error(err))
		utils.WriteJSONError(w, http.StatusInternalServerError, utils.CodeInternal, "could not sign in")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

type profileView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	PointsBalance int    `json:"pointsBalance"`
}

// Profile handles GET /api/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, utils.CodeUnauthenticated, "sign in required")
		return
	}

	u, err := h.svc.Profile(r.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		utils.WriteJSONError(w, http.StatusNotFound, utils.CodeNotFound, "user not found")
		return
	}
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to load profile", zap.Error(err))
		utils.WriteJSONError(w, http.StatusInternalServerError, utils.CodeInternal, "could not load profile")
		return
	}

	utils.WriteJSON(w, http.StatusOK, profileView{
		ID:            u.ID,
		Name:          u.Name,
		Phone:         u.Phone,
		Email:         u.Email,
		PointsBalance: u.PointsBalance,
	})
}
