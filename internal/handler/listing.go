package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/partner-booking/internal/model"
	"github.com/iliyamo/partner-booking/internal/repository"
)

// ListingHandler serves listing browse endpoints.  The public routes
// return only active listings; the partner route returns the caller's own
// listings including inactive ones.
type ListingHandler struct {
	Listings *repository.ListingRepo
}

// NewListingHandler constructs a ListingHandler.
func NewListingHandler(listings *repository.ListingRepo) *ListingHandler {
	if listings == nil {
		panic("nil repository passed to NewListingHandler")
	}
	return &ListingHandler{Listings: listings}
}

func listingJSON(l *model.Listing) echo.Map {
	return echo.Map{
		"id":          l.ID,
		"category":    string(l.Category),
		"title":       l.Title,
		"description": l.Description,
		"is_active":   l.IsActive,
	}
}

// GetListings handles GET /v1/listings.  The optional ?category query
// parameter filters by hotel/guide/taxi/place.
func (h *ListingHandler) GetListings(c echo.Context) error {
	category := model.ListingCategory(c.QueryParam("category"))
	items, err := h.Listings.ListActive(c.Request().Context(), category)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load listings"})
	}
	out := make([]echo.Map, 0, len(items))
	for i := range items {
		out = append(out, listingJSON(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetListing handles GET /v1/listings/:id.  Inactive listings are hidden
// from the public view.
func (h *ListingHandler) GetListing(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	l, err := h.Listings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch listing"})
	}
	if !l.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": listingJSON(l)})
}

// GetMyListings handles GET /v1/partners/me/listings.  It returns all
// listings owned by the authenticated partner.
func (h *ListingHandler) GetMyListings(c echo.Context) error {
	pid, err := partnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Listings.ListByPartner(c.Request().Context(), pid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load listings"})
	}
	out := make([]echo.Map, 0, len(items))
	for i := range items {
		out = append(out, listingJSON(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
