package handlers

import (
	"net/http"

	"coldchain/internal/services"

	"github.com/gin-gonic/gin"
)

type RentalHandler struct {
	rentalService services.RentalService
}

func NewRentalHandler(rentalService services.RentalService) *RentalHandler {
	return &RentalHandler{rentalService: rentalService}
}

func (h *RentalHandler) CreateRental(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	var input services.CreateRentalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	input.SiteID = siteID
	input.ActorID = actorID(c)

	rental, err := h.rentalService.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rental)
}

func (h *RentalHandler) GetRental(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	rentalID, ok := uintParam(c, "rental_id")
	if !ok {
		return
	}

	rental, err := h.rentalService.GetByID(siteID, rentalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}

func (h *RentalHandler) ListRentals(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	rentals, err := h.rentalService.GetBySite(siteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rentals": rentals})
}

func (h *RentalHandler) ApproveRental(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	rentalID, ok := uintParam(c, "rental_id")
	if !ok {
		return
	}

	result, err := h.rentalService.Approve(rentalID, siteID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *RentalHandler) ActivateRental(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	rentalID, ok := uintParam(c, "rental_id")
	if !ok {
		return
	}

	rental, err := h.rentalService.Activate(rentalID, siteID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}

func (h *RentalHandler) CompleteRental(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	rentalID, ok := uintParam(c, "rental_id")
	if !ok {
		return
	}

	rental, err := h.rentalService.Complete(rentalID, siteID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}
