package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/salesreport/internal/report"
	"github.com/salesreport/internal/store"
)

// SalesRecord is one normalised transaction as served by /api/sales-data.
type SalesRecord struct {
	Date        string  `json:"date"`
	Product     string  `json:"product"`
	Customer    string  `json:"customer"`
	Region      string  `json:"region"`
	PaymentMode string  `json:"payment_mode"`
	Quantity    int     `json:"quantity"`
	Amount      float64 `json:"amount"`
}

// SalesHandler serves the filtered transactions of an upload for charting.
type SalesHandler struct {
	BaseHandler
	uploads uploadFinder
}

func NewSalesHandler(logger *slog.Logger, uploads uploadFinder) *SalesHandler {
	return &SalesHandler{BaseHandler: BaseHandler{Logger: logger}, uploads: uploads}
}

// Data answers a JSON array of records. Query parameters: filepath
// (required), start_date, end_date, product, customer.
func (h *SalesHandler) Data(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	upload, err := h.uploads.GetByPath(r.Context(), params.Get("filepath"))
	if errors.Is(err, store.ErrNotFound) {
		h.notFoundResponse(w, r, "file not found")
		return
	}
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	q, err := report.ParseQuery(params.Get("start_date"), params.Get("end_date"), params.Get("product"), params.Get("customer"))
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid date format. Please use YYYY-MM-DD.")
		return
	}

	f, err := os.Open(upload.Filepath)
	if err != nil {
		h.Logger.Warn("sales: uploaded file missing", "path", upload.Filepath, "err", err)
		h.notFoundResponse(w, r, "file not found")
		return
	}
	defer f.Close()

	txs, err := report.ReadTransactions(f)
	if err != nil {
		h.errorResponse(w, r, http.StatusUnprocessableEntity, "could not read sales data: "+err.Error())
		return
	}

	txs = q.Apply(txs)
	records := make([]SalesRecord, 0, len(txs))
	for _, tx := range txs {
		records = append(records, SalesRecord{
			Date:        tx.Date.Format("2006-01-02"),
			Product:     tx.Product,
			Customer:    tx.Customer,
			Region:      tx.Region,
			PaymentMode: tx.PaymentMode,
			Quantity:    tx.Quantity,
			Amount:      tx.Amount,
		})
	}
	h.respond(w, r, http.StatusOK, records)
}
