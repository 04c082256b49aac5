package controller

import (
	"errors"
	"net/http"
	"strconv"

	httpdto "github.com/refi-auto/ms-go-accounts/app/dto/http"
	"github.com/refi-auto/ms-go-accounts/app/middleware"
	"github.com/refi-auto/ms-go-accounts/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type UserController struct {
	userService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

func (c *UserController) Register(ctx echo.Context) error {
	var req httpdto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind register request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		logrus.WithField("username", req.Username).Debug("Register validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("username", req.Username).Info("Register request received")
	user, err := c.userService.Register(ctx.Request().Context(), req.FirstName, req.LastName, req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrEmailTaken) || errors.Is(err, service.ErrUserExists) {
			logrus.WithField("username", req.Username).Warn("Register failed: conflict")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: err.Error()})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.WithField("username", req.Username).Warn("Register failed: weak password")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("username", req.Username).Error("Register failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	return ctx.JSON(http.StatusCreated, httpdto.RegisterResponse{
		UserID:  user.ID,
		Message: "user created successfully",
	})
}

func (c *UserController) Login(ctx echo.Context) error {
	var req httpdto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		logrus.WithField("username", req.Username).Debug("Login validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("username", req.Username).Info("Login request received")
	pair, err := c.userService.Login(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("username", req.Username).Warn("Login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid credentials"})
		}
		logrus.WithError(err).WithField("username", req.Username).Error("Login failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("username", req.Username).Info("Login successful")
	return ctx.JSON(http.StatusOK, httpdto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (c *UserController) Logout(ctx echo.Context) error {
	claims, ok := ctx.Get(middleware.ContextKeyClaims).(*service.Claims)
	if !ok {
		logrus.Warn("Logout failed: missing token claims in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	logrus.WithField("user_id", claims.UserID).Info("Logout request received")
	if err := c.userService.Logout(ctx.Request().Context(), claims); err != nil {
		logrus.WithError(err).WithField("user_id", claims.UserID).Error("Logout failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", claims.UserID).Info("Logout successful")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "successfully logged out"})
}

func (c *UserController) Refresh(ctx echo.Context) error {
	claims, ok := ctx.Get(middleware.ContextKeyClaims).(*service.Claims)
	if !ok {
		logrus.Warn("Refresh failed: missing token claims in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	logrus.WithField("user_id", claims.UserID).Info("Refresh request received")
	accessToken, err := c.userService.Refresh(ctx.Request().Context(), claims)
	if err != nil {
		logrus.WithError(err).WithField("user_id", claims.UserID).Error("Refresh failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", claims.UserID).Info("Refresh successful")
	return ctx.JSON(http.StatusOK, httpdto.RefreshResponse{AccessToken: accessToken})
}

func (c *UserController) GetUser(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
	}

	user, err := c.userService.GetUser(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("user_id", id).Debug("Get user: not found")
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", id).Error("Get user failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Username:  user.Username,
	})
}

func (c *UserController) DeleteUser(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
	}

	logrus.WithField("user_id", id).Info("Delete user request received")
	if err := c.userService.DeleteUser(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("user_id", id).Warn("Delete user failed: not found")
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", id).Error("Delete user failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", id).Info("User deleted")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "user deleted"})
}

func (c *UserController) UpdatePassword(ctx echo.Context) error {
	var req httpdto.UpdatePasswordRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind update password request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		logrus.Debug("Update password validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	userID, ok := ctx.Get(middleware.ContextKeyUserID).(uint64)
	if !ok {
		logrus.Warn("Update password failed: missing user_id in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	logrus.WithField("user_id", userID).Info("Update password request received")
	err := c.userService.ChangePassword(ctx.Request().Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("user_id", userID).Warn("Update password failed: user not found")
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
		}
		if errors.Is(err, service.ErrPasswordMismatch) {
			logrus.WithField("user_id", userID).Warn("Update password failed: current password mismatch")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid current password"})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.WithField("user_id", userID).Warn("Update password failed: weak password")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Update password failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", userID).Info("Password updated")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "password updated successfully"})
}
