package handlers

import (
	"errors"
	"math"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"foodgram/internal/logger"
	"foodgram/internal/permissions"
	"foodgram/internal/repositories"
	"foodgram/internal/services"
)

const maxPageSize = 100

var errInvalidPage = errors.New("invalid page")

// writeError renders a service error with the status code it maps to.
func writeError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(validationErr.Fields)
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": conflictErr.Message})
	case errors.Is(err, services.ErrNotFound):
		return notFound(c)
	case errors.Is(err, errInvalidPage):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Invalid page."})
	case errors.Is(err, permissions.ErrNotAuthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Authentication credentials were not provided."})
	case errors.Is(err, services.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token."})
	case errors.Is(err, permissions.ErrPermissionDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "You do not have permission to perform this action."})
	default:
		logger.Log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error."})
	}
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not found."})
}

func badBody(c *fiber.Ctx, err error) error {
	logger.Log.Debugw("failed to parse request body", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid request body."})
}

// idParam reads a positive numeric path parameter.
func idParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// positiveQuery reads a positive integer query parameter, returning 0 when absent or invalid.
func positiveQuery(c *fiber.Ctx, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// pager turns page/limit query parameters into a repository window.
type pager struct {
	number int
	size   int
}

func newPager(c *fiber.Ctx, defaultSize int) (pager, error) {
	p := pager{number: 1, size: max(defaultSize, 1)}
	if size := positiveQuery(c, "limit"); size > 0 {
		p.size = min(size, maxPageSize)
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		// The offset (n-1)*size and the next link's n*size must not overflow.
		if err != nil || n < 1 || n > math.MaxInt/p.size {
			return p, errInvalidPage
		}
		p.number = n
	}
	return p, nil
}

func (p pager) page() repositories.Page {
	return repositories.Page{Offset: (p.number - 1) * p.size, Limit: p.size}
}

// respond writes the paginated envelope. Pages past the end are reported as not found.
func (p pager) respond(c *fiber.Ctx, count int64, results any) error {
	if p.number > 1 && int64((p.number-1)*p.size) >= count {
		return writeError(c, errInvalidPage)
	}

	var next, previous any
	if int64(p.number*p.size) < count {
		next = p.link(c, p.number+1)
	}
	if p.number > 1 {
		previous = p.link(c, p.number-1)
	}
	return c.JSON(fiber.Map{
		"count":    count,
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}

func (p pager) link(c *fiber.Ctx, number int) string {
	query, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	if query == nil {
		query = url.Values{}
	}
	if number == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}
	link := c.BaseURL() + c.Path()
	if encoded := query.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link
}
