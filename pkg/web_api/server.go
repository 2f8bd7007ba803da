package web_api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/stopcast/stopcast/pkg/evaluate"
)

// StopSummary is the per-stop view served by the API. MAE is nil when the
// metric is undefined (no records for that stop).
type StopSummary struct {
	StopID   int               `json:"stop_id"`
	StopName string            `json:"stop_name"`
	MAE      *float64          `json:"mae"`
	Error    string            `json:"error,omitempty"`
	Records  []evaluate.Record `json:"-"`
}

func SetupServer(listen string, summaries []StopSummary) error {
	return createServer(summaries).Listen(listen)
}

func createServer(summaries []StopSummary) *fiber.App {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/predictions")

	group.Get("version", APIVersion)

	group.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(summaries)
	})

	group.Get("/:id", func(c *fiber.Ctx) error {
		stopID, err := strconv.Atoi(c.Params("id"))
		if err != nil || stopID < 0 || stopID >= len(summaries) {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Unknown stop",
			})
		}

		return c.JSON(summaries[stopID].Records)
	})

	return webApp
}

func APIVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": "v0.1",
	})
}
