package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/ecom-returns/internal/httpx"
	"github.com/MikeMC777/ecom-returns/internal/user"
)

type userService interface {
	Register(ctx context.Context, in user.RegisterRequest) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Get(ctx context.Context, id int64) (*user.User, error)
	Delete(ctx context.Context, id int64) error
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, user.HTTPError{Error: msg})
}

// registerHandler godoc
// @Summary  Register an account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      user.RegisterRequest  true  "Account"
// @Success  201   {object}  user.User
// @Failure  400   {object}  user.HTTPError
// @Failure  409   {object}  user.HTTPError
// @Router   /auth/register [post]
func registerHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.RegisterRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, "name, valid email and a password of 8+ characters are required")
			return
		}
		u, err := svc.Register(c.Request.Context(), in)
		switch {
		case err == nil:
			c.JSON(http.StatusCreated, u)
		case errors.Is(err, user.ErrValidation):
			writeError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, user.ErrAlreadyExist):
			writeError(c, http.StatusConflict, "email already registered")
		default:
			log.Printf("[user] register: %v", err)
			writeError(c, http.StatusInternalServerError, "could not register")
		}
	}
}

// loginHandler godoc
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      user.LoginRequest  true  "Credentials"
// @Success  200   {object}  user.TokenResponse
// @Failure  401   {object}  user.HTTPError
// @Router   /auth/login [post]
func loginHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.LoginRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, "email and password are required")
			return
		}
		token, err := svc.Login(c.Request.Context(), in.Email, in.Password)
		if errors.Is(err, user.ErrInvalidCredentials) {
			writeError(c, http.StatusUnauthorized, err.Error())
			return
		}
		if err != nil {
			log.Printf("[user] login: %v", err)
			writeError(c, http.StatusInternalServerError, "could not log in")
			return
		}
		c.JSON(http.StatusOK, user.TokenResponse{Token: token})
	}
}

// meHandler godoc
// @Summary   Current user profile
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  user.User
// @Failure   401  {object}  user.HTTPError
// @Failure   404  {object}  user.HTTPError
// @Router    /users/me [get]
func meHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := httpx.UserID(c)
		u, err := svc.Get(c.Request.Context(), id)
		if errors.Is(err, user.ErrNotFound) {
			writeError(c, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			log.Printf("[user] get id=%d: %v", id, err)
			writeError(c, http.StatusInternalServerError, "could not load user")
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// deleteMeHandler godoc
// @Summary      Delete the current account
// @Description  Soft delete; orders and transactions are kept.
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Failure      404  {object}  user.HTTPError
// @Router       /users/me [delete]
func deleteMeHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := httpx.UserID(c)
		err := svc.Delete(c.Request.Context(), id)
		if errors.Is(err, user.ErrNotFound) {
			writeError(c, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			log.Printf("[user] delete id=%d: %v", id, err)
			writeError(c, http.StatusInternalServerError, "could not delete user")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
