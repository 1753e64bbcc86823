package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/console"
)

type ConsoleHandler struct {
	controller *console.Controller
}

func NewConsoleHandler(controller *console.Controller) *ConsoleHandler {
	return &ConsoleHandler{
		controller: controller,
	}
}

// HandlePage renders the current state of the page.
func (h *ConsoleHandler) HandlePage(c *fiber.Ctx) error {
	html, err := h.controller.Render(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}

	c.Type("html", "utf-8")
	return c.SendString(html)
}

// HandleUpload submits the upload form and redirects back to the page, which
// already shows either the analysis or the error.
func (h *ConsoleHandler) HandleUpload(c *fiber.Ctx) error {
	sub := console.Submission{
		JobDescription: c.FormValue("job_description"),
	}

	if header, err := c.FormFile("resume"); err == nil {
		f, err := header.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read uploaded file")
		}
		defer f.Close()

		sub.File = &console.Upload{
			Filename: header.Filename,
			Content:  f,
		}
	}

	if err := h.controller.Submit(c.UserContext(), sub); err != nil {
		if pageUnavailable(c.UserContext(), err) {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		log.Printf("⚠️  Console upload finished with error: %v\n", err)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleRefresh re-fetches the history list and redirects back to the page.
func (h *ConsoleHandler) HandleRefresh(c *fiber.Ctx) error {
	if err := h.controller.RefreshHistory(c.UserContext()); err != nil {
		if pageUnavailable(c.UserContext(), err) {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		log.Printf("⚠️  History refresh finished with error: %v\n", err)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// pageUnavailable reports errors that left the page untouched, so there is
// nothing to redirect to.
func pageUnavailable(ctx context.Context, err error) bool {
	return errors.Is(err, console.ErrLoopStopped) || ctx.Err() != nil
}
