// README: Admin CSV export handler.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxiboard/internal/authz"
	"taxiboard/internal/modules/export"
)

type ExportHandler struct {
	export *export.Service
}

func NewExportHandler(svc *export.Service) *ExportHandler {
	return &ExportHandler{export: svc}
}

// CSV streams rides over [from, to] (inclusive days) as a flat CSV dump.
func (h *ExportHandler) CSV(c *gin.Context) {
	if _, ok := requireActor(c, authz.OpExport); !ok {
		return
	}
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid from")
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid to")
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="rides.csv"`)
	if err := h.export.WriteCSV(c.Request.Context(), c.Writer, from, to.Add(24*time.Hour)); err != nil {
		writeError(c, http.StatusInternalServerError, "export failed")
		return
	}
}
