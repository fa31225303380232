package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"

	"diningwatch/internal/config"
	"diningwatch/internal/email"
	"diningwatch/internal/models"
	"diningwatch/internal/textmatch"
	"diningwatch/internal/validation"
)

// SubscriptionStore is the persistence collaborator for the subscription API.
type SubscriptionStore interface {
	Subscribe(ctx context.Context, email string, keywords, halls []string) (*models.Subscription, bool, error)
	Unsubscribe(ctx context.Context, email string) (bool, error)
}

// WelcomeMailer sends the non-fatal welcome email on first subscribe.
type WelcomeMailer interface {
	IsEnabled() bool
	SendAsync(to []string, subject, htmlBody, textBody string)
}

// SubscriptionHandler handles subscribe/unsubscribe requests.
type SubscriptionHandler struct {
	store     SubscriptionStore
	cfg       *config.Config
	mailer    WelcomeMailer
	templates *email.Templates
	hallNames map[string]bool
}

// NewSubscriptionHandler creates a subscription handler over the configured
// hall table.
func NewSubscriptionHandler(store SubscriptionStore, cfg *config.Config, mailer WelcomeMailer, templates *email.Templates, halls []models.Hall) *SubscriptionHandler {
	names := make(map[string]bool, len(halls))
	for _, h := range halls {
		names[h.Name] = true
	}
	return &SubscriptionHandler{
		store:     store,
		cfg:       cfg,
		mailer:    mailer,
		templates: templates,
		hallNames: names,
	}
}

type subscribeRequest struct {
	Email    string   `json:"email" form:"email"`
	Keywords string   `json:"keywords" form:"keywords"`
	Halls    []string `json:"halls" form:"halls"`
}

// Subscribe creates or extends a subscription. Keywords arrive as one
// comma-separated string of magic words; halls as an optional list of hall
// names, absence meaning "all halls". Repeat subscriptions merge: keywords
// and halls are unioned, never replaced.
func (h *SubscriptionHandler) Subscribe(c fiber.Ctx) error {
	var req subscribeRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	addr := validation.NormalizeEmail(req.Email)
	if !validation.ValidateEmail(addr) {
		return jsonError(c, fiber.StatusBadRequest, "a valid email address is required")
	}

	keywords := textmatch.SplitKeywords(req.Keywords)
	if len(keywords) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "at least one magic word is required (comma-separated)")
	}

	for _, hall := range req.Halls {
		if !h.hallNames[hall] {
			return jsonError(c, fiber.StatusBadRequest, "unknown hall: "+hall)
		}
	}

	sub, created, err := h.store.Subscribe(c.Context(), addr, keywords, req.Halls)
	if err != nil {
		log.Printf("Failed to subscribe %s: %v", addr, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to save subscription")
	}

	// welcome email is best-effort; a send failure must not fail the request
	if created && h.cfg.WelcomeEmailEnabled && h.mailer.IsEnabled() {
		subject, htmlBody, textBody := h.templates.Welcome(sub.Keywords)
		h.mailer.SendAsync([]string{sub.Email}, subject, htmlBody, textBody)
	}

	return jsonSuccess(c, fiber.Map{
		"email":    sub.Email,
		"keywords": sub.Keywords,
		"halls":    sub.Halls,
		"created":  created,
	})
}

type unsubscribeRequest struct {
	Email string `json:"email" form:"email"`
}

// Unsubscribe removes every alert for an email address.
func (h *SubscriptionHandler) Unsubscribe(c fiber.Ctx) error {
	var req unsubscribeRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	addr := validation.NormalizeEmail(req.Email)
	if !validation.ValidateEmail(addr) {
		return jsonError(c, fiber.StatusBadRequest, "a valid email address is required")
	}

	removed, err := h.store.Unsubscribe(c.Context(), addr)
	if err != nil {
		log.Printf("Failed to unsubscribe %s: %v", addr, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to remove subscription")
	}

	if !removed {
		return jsonError(c, fiber.StatusNotFound, "no active subscriptions found for that email")
	}
	return jsonSuccess(c, fiber.Map{"email": addr, "removed": true})
}
