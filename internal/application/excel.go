package application

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "采购数据"

// exportPageSize bounds a single export; one hotel produces far fewer
// applications than this in years.
const exportPageSize = 10000

var exportHeaders = []string{
	"申请单号", "采购员", "采购日期", "物品名称", "数量", "单位", "单价", "小计",
	"申请总额", "状态", "审核时间", "审核备注", "入账状态", "入账时间", "入账人",
	"入账备注", "提交时间",
}

var exportWidths = []float64{18, 12, 12, 16, 10, 8, 10, 12, 12, 10, 18, 20, 10, 18, 12, 20, 18}

var statusLabels = map[string]string{
	StatusPending:  "待审核",
	StatusApproved: "已通过",
	StatusRejected: "已拒绝",
}

var accountingLabels = map[string]string{
	AccountingWaiting: "待入账",
	AccountingDone:    "已入账",
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExportExcel renders the filtered applications as a spreadsheet, one row
// per line item, with the application-level columns repeated.
func (s *Service) ExportExcel(ctx context.Context, actorID int, actorRole string, filter ListFilter) (*excelize.File, error) {
	filter.Page = 1
	filter.PageSize = exportPageSize
	apps, _, err := s.List(ctx, actorID, actorRole, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(exportSheet, col, col, exportWidths[i]); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, app := range apps {
		accounting := ""
		if app.AccountingStatus != nil {
			accounting = accountingLabels[*app.AccountingStatus]
		}
		for _, item := range app.Items {
			values := []any{
				app.AppNo,
				app.PurchaserName,
				app.PurchaseDate.Format("2006-01-02"),
				item.ItemName,
				item.Quantity.String(),
				item.Unit,
				item.Price.StringFixed(2),
				item.Subtotal.StringFixed(2),
				app.TotalAmount.StringFixed(2),
				statusLabels[app.Status],
				formatTime(app.ReviewTime),
				strOrEmpty(app.ReviewNotes),
				accounting,
				formatTime(app.AccountingTime),
				strOrEmpty(app.AccountingPerson),
				strOrEmpty(app.AccountingNotes),
				app.CreatedAt.Format("2006-01-02 15:04"),
			}
			for i, value := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := f.SetCellValue(exportSheet, cell, value); err != nil {
					return nil, fmt.Errorf("write cell %s: %w", cell, err)
				}
			}
			row++
		}
	}

	return f, nil
}
