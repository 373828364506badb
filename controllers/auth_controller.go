package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"supernova/middleware"
	"supernova/models"
	"supernova/services"
)

type AuthController struct {
	auth         *services.AuthService
	secureCookie bool
}

func NewAuthController(auth *services.AuthService, secureCookie bool) *AuthController {
	return &AuthController{auth: auth, secureCookie: secureCookie}
}

func (ctl *AuthController) setTokenCookie(c *gin.Context, token services.Token) {
	maxAge := int(time.Until(token.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, token.Value, maxAge, "/", "", ctl.secureCookie, true)
}

func (ctl *AuthController) Register(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required,min=3"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		FullName struct {
			FirstName string `json:"firstName" binding:"required"`
			LastName  string `json:"lastName" binding:"required"`
		} `json:"fullName"`
		Role string `json:"role" binding:"omitempty,oneof=user seller"`
	}
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, token, err := ctl.auth.Register(ctx, services.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		FullName: models.FullName{FirstName: input.FullName.FirstName, LastName: input.FullName.LastName},
		Role:     input.Role,
	})
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		respondError(c, err)
		return
	}

	ctl.setTokenCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

func (ctl *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required_without=Username"`
		Username string `json:"username" binding:"required_without=Email"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, token, err := ctl.auth.Login(ctx, services.LoginInput{Email: input.Email, Username: input.Username, Password: input.Password})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	ctl.setTokenCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully", "user": user, "token": token.Value})
}

func (ctl *AuthController) Me(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := ctl.auth.Me(ctx, currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ctl *AuthController) Logout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := ctl.auth.Logout(ctx, currentSession(c)); err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", ctl.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (ctl *AuthController) GetAddresses(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	addresses, err := ctl.auth.Addresses(ctx, currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (ctl *AuthController) AddAddress(c *gin.Context) {
	var input struct {
		Street    string `json:"street" binding:"required"`
		City      string `json:"city" binding:"required"`
		State     string `json:"state" binding:"required"`
		ZipCode   string `json:"zipCode" binding:"required,pincode"`
		Country   string `json:"country" binding:"required"`
		Phone     string `json:"phone" binding:"required,phone"`
		IsDefault bool   `json:"isDefault"`
	}
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	address, err := ctl.auth.AddAddress(ctx, currentSession(c), services.AddressInput(input))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Address added successfully", "address": address})
}

func (ctl *AuthController) DeleteAddress(c *gin.Context) {
	addressID, ok := objectIDParam(c, "addressId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	addresses, err := ctl.auth.DeleteAddress(ctx, currentSession(c), addressID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted successfully", "addresses": addresses})
}

func (ctl *AuthController) SetDefaultAddress(c *gin.Context) {
	addressID, ok := objectIDParam(c, "addressId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	addresses, err := ctl.auth.SetDefaultAddress(ctx, currentSession(c), addressID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default address updated", "addresses": addresses})
}
