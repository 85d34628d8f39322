package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/casoauth/internal/auth"
)

type InstitutionHandler struct {
	institutionService *auth.InstitutionService
}

func (h *InstitutionHandler) GetLogoutURL(ctx *fiber.Ctx) error {
	providerID := ctx.Params("providerID")
	logoutURL, err := h.institutionService.FindLogoutURLByProviderID(ctx.Context(), providerID)
	if errors.Is(err, auth.ErrInstitutionNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(
			NewErrorResponse(fiber.StatusNotFound, "Institution not found"),
		)
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(
			NewErrorResponse(fiber.StatusInternalServerError, "Internal server error"),
		)
	}
	return ctx.JSON(NewDataResponse(LogoutURLResponse{
		ProviderID: providerID,
		LogoutURL:  logoutURL,
	}))
}

func NewInstitutionHandler(institutionService *auth.InstitutionService) *InstitutionHandler {
	return &InstitutionHandler{
		institutionService: institutionService,
	}
}
