package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/casoauth/internal/auth"
	"github.com/khanghh/casoauth/model"
)

type ServiceHandler struct {
	serviceRegistry *auth.ServiceRegistry
}

type RegisterServiceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CallbackURL string `json:"callbackURL"`
}

type RegisteredServiceResponse struct {
	ClientID     string `json:"clientID"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CallbackURL  string `json:"callbackURL"`
}

// PostRegister registers a relying application and returns its generated
// credentials. The client secret is only ever shown in this response.
func (h *ServiceHandler) PostRegister(ctx *fiber.Ctx) error {
	var req RegisterServiceRequest
	if err := ctx.BodyParser(&req); err != nil || req.Name == "" || req.CallbackURL == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, "Missing service name or callback URL"),
		)
	}

	service := &model.Service{
		Name:        req.Name,
		Description: req.Description,
		CallbackURL: req.CallbackURL,
	}
	if err := h.serviceRegistry.RegisterService(ctx.Context(), service); err != nil {
		if errors.Is(err, auth.ErrServiceAlreadyRegistered) {
			return ctx.Status(fiber.StatusConflict).JSON(
				NewErrorResponse(fiber.StatusConflict, "Service already registered"),
			)
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(
			NewErrorResponse(fiber.StatusInternalServerError, "Internal server error"),
		)
	}
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(RegisteredServiceResponse{
		ClientID:     service.ClientID,
		ClientSecret: service.ClientSecret,
		Name:         service.Name,
		Description:  service.Description,
		CallbackURL:  service.CallbackURL,
	}))
}

func (h *ServiceHandler) DeleteService(ctx *fiber.Ctx) error {
	clientID := ctx.Params("clientID")
	if _, err := h.serviceRegistry.GetService(ctx.Context(), clientID); err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(
			NewErrorResponse(fiber.StatusNotFound, "Service not found"),
		)
	}
	if err := h.serviceRegistry.RemoveService(ctx.Context(), clientID); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(
			NewErrorResponse(fiber.StatusInternalServerError, "Internal server error"),
		)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func NewServiceHandler(serviceRegistry *auth.ServiceRegistry) *ServiceHandler {
	return &ServiceHandler{
		serviceRegistry: serviceRegistry,
	}
}
