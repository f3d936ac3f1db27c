package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ChalithH/SkillForge/internal/models"
	"github.com/ChalithH/SkillForge/internal/service"
	"github.com/ChalithH/SkillForge/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// CreditHandler serves balances, ledger history, admin adjustments and
// history export.
type CreditHandler struct {
	Ledger *service.CreditLedger
}

func NewCreditHandler(ledger *service.CreditLedger) *CreditHandler {
	return &CreditHandler{Ledger: ledger}
}

func (h *CreditHandler) GetBalance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	balance, err := h.Ledger.GetUserCredits(user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"credit_cent": balance,
		"credits":     formatCentToCredits(balance),
	})
}

func transactionPayload(t *models.CreditTransaction) gin.H {
	return gin.H{
		"id":                 t.ID,
		"amount_cent":        t.AmountCent,
		"amount":             formatCentToCredits(t.AmountCent),
		"balance_after_cent": t.BalanceAfterCent,
		"balance_after":      formatCentToCredits(t.BalanceAfterCent),
		"type":               t.Type,
		"reason":             t.Reason,
		"related_user_id":    t.RelatedUserID,
		"exchange_id":        t.ExchangeID,
		"created_at":         t.CreatedAt,
	}
}

func (h *CreditHandler) GetHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}

	rows, err := h.Ledger.GetUserCreditHistory(user.ID, limit)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(rows))
	for i := range rows {
		items = append(items, transactionPayload(&rows[i]))
	}

	util.Success(c, util.Response{
		"transactions": items,
	})
}

type adjustReq struct {
	UserID     uint   `json:"user_id" binding:"required"`
	AmountCent int64  `json:"amount_cent" binding:"required"`
	Reason     string `json:"reason" binding:"required,max=255"`
}

// AddCredits grants credits as an administrative adjustment.
func (h *CreditHandler) AddCredits(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req adjustReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := h.Ledger.AddCredits(req.UserID, req.AmountCent, req.Reason); err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "credits added",
	})
}

// DeductCredits removes credits as an administrative adjustment.
func (h *CreditHandler) DeductCredits(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req adjustReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := h.Ledger.DeductCredits(req.UserID, req.AmountCent, req.Reason); err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "credits deducted",
	})
}

var exportHeaders = []string{"Date", "Type", "Amount", "Balance After", "Reason", "Exchange"}

func exportRow(t *models.CreditTransaction) []string {
	exchange := ""
	if t.ExchangeID != nil {
		exchange = strconv.FormatUint(uint64(*t.ExchangeID), 10)
	}
	return []string{
		t.CreatedAt.Format("2006-01-02 15:04"),
		t.Type,
		formatCentToCredits(t.AmountCent),
		formatCentToCredits(t.BalanceAfterCent),
		t.Reason,
		exchange,
	}
}

// ExportCSV streams the caller's full credit history as CSV.
func (h *CreditHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	rows, err := h.Ledger.GetUserCreditHistory(user.ID, 0)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"credits_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range rows {
		writer.Write(exportRow(&rows[i]))
	}
}

// ExportXLSX streams the caller's full credit history as a spreadsheet.
func (h *CreditHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	rows, err := h.Ledger.GetUserCreditHistory(user.ID, 0)
	if err != nil {
		fail(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "Credit History"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx := range rows {
		row := idx + 2
		for col, v := range exportRow(&rows[idx]) {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+col, row), v)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "D", 14)
	f.SetColWidth(sheetName, "E", "E", 32)
	f.SetColWidth(sheetName, "F", "F", 10)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"credits_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to export")
	}
}
