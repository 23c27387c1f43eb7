package handlers

import (
	"net/http"

	"coldchain/internal/models"
	"coldchain/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler covers site, cold room, asset and user administration.
type AdminHandler struct {
	siteService services.SiteService
	userService services.UserService
}

func NewAdminHandler(siteService services.SiteService, userService services.UserService) *AdminHandler {
	return &AdminHandler{siteService: siteService, userService: userService}
}

func (h *AdminHandler) CreateSite(c *gin.Context) {
	var site models.Site
	if err := c.ShouldBindJSON(&site); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.siteService.CreateSite(&site); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, site)
}

func (h *AdminHandler) GetSite(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	site, err := h.siteService.GetSite(siteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

func (h *AdminHandler) ListSites(c *gin.Context) {
	sites, err := h.siteService.GetAllSites()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sites": sites})
}

func (h *AdminHandler) CreateColdRoom(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	var input services.CreateColdRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	input.SiteID = siteID
	input.ActorID = actorID(c)

	room, err := h.siteService.CreateColdRoom(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *AdminHandler) ListColdRooms(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	rooms, err := h.siteService.ListColdRooms(siteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cold_rooms": rooms})
}

func (h *AdminHandler) RegisterAsset(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	var input services.RegisterAssetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	input.SiteID = siteID
	input.ActorID = actorID(c)

	asset, err := h.siteService.RegisterAsset(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, asset)
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        string `json:"role" binding:"required"`
	SiteID      *uint  `json:"site_id"`
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		SiteID:      req.SiteID,
	}
	if err := h.userService.CreateUser(user, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.userService.VerifyPassword(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, user)
}
