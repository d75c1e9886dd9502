package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"desk_server/adapter/out/persistence"
	"desk_server/core/domain"
	"desk_server/pkg/apperr"
)

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// pageFromQuery extracts page/page_size query params.
func pageFromQuery(c *fiber.Ctx) *domain.PageRequest {
	return &domain.PageRequest{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}
}

// repoError translates persistence errors into application errors; the
// centralized error handler turns them into responses.
func repoError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return apperr.NotFound("resource")
	case errors.Is(err, persistence.ErrDuplicate):
		return apperr.Conflict("duplicate entry")
	case errors.Is(err, persistence.ErrInvalidInput):
		return apperr.BadRequest("invalid input")
	default:
		return apperr.DatabaseError("query", err)
	}
}

// QueryString returns pointer to string query param (nil if empty)
func QueryString(c *fiber.Ctx, key string) *string {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	return &val
}

// QueryInt64 returns pointer to int64 query param (nil if 0 or not present)
func QueryInt64(c *fiber.Ctx, key string) *int64 {
	val := c.QueryInt(key, 0)
	if val == 0 {
		return nil
	}
	v := int64(val)
	return &v
}
