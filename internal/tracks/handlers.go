package tracks

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/planbiir/gthin/internal/edit"
	"github.com/planbiir/gthin/internal/format"
	"github.com/planbiir/gthin/internal/store"
	"github.com/planbiir/gthin/internal/thin"
	"github.com/planbiir/gthin/internal/track"
)

// RegisterThinRoute mounts the stateless thinning endpoint.
func RegisterThinRoute(r fiber.Router, svc *Service) {
	r.Post("/thin", func(c *fiber.Ctx) error {
		var req ThinRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		result, err := svc.Thin(req)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(result)
	})
}

// RegisterRoutes mounts the stored-track endpoints.
func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		resp, err := svc.Upload(c.Context(), c.Query("name"), c.Body())
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		resp, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(resp)
	})

	r.Put("/:id/thinning", func(c *fiber.Ctx) error {
		var spec thin.Spec
		if err := c.BodyParser(&spec); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		resp, err := svc.SetThinning(c.Context(), c.Params("id"), spec)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(resp)
	})

	r.Get("/:id/thinning", func(c *fiber.Ctx) error {
		spec, err := svc.Thinning(c.Context(), c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(spec)
	})

	r.Get("/:id/export", func(c *fiber.Ctx) error {
		data, contentType, err := svc.Export(c.Context(), c.Params("id"), c.Query("format"), c.QueryBool("thinned"))
		if err != nil {
			return toFiberError(err)
		}
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(data)
	})

	r.Post("/:id/files", func(c *fiber.Ctx) error {
		resp, err := svc.AddFile(c.Context(), c.Params("id"), c.Query("name"), c.Body())
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(resp)
	})

	r.Delete("/:id/files/:index", func(c *fiber.Ctx) error {
		index, err := c.ParamsInt("index")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file index must be a number")
		}
		resp, err := svc.RemoveFile(c.Context(), c.Params("id"), index)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(resp)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id")); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func toFiberError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, edit.ErrFileIndex):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, format.ErrUnknownFormat),
		errors.Is(err, thin.ErrInvalidPolicy),
		errors.Is(err, thin.ErrUnknownKind),
		errors.Is(err, thin.ErrNoPolicy),
		errors.Is(err, track.ErrInvalidCoordinate):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("tracks: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
