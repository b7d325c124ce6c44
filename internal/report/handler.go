package report

import (
	"fmt"
	"time"

	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type StageSummary struct {
	Stage       models.StageType `json:"stage"`
	LogCount    int64            `json:"log_count"`
	QuantityOut int64            `json:"quantity_out"`
}

type MonthlySummary struct {
	Year             int            `json:"year"`
	Month            int            `json:"month"`
	Stages           []StageSummary `json:"stages"`
	BatchesCreated   int64          `json:"batches_created"`
	BatchesCompleted int64          `json:"batches_completed"`
	DefectsMinor     int64          `json:"defects_minor"`
	DefectsMajor     int64          `json:"defects_major"`
	DefectsCritical  int64          `json:"defects_critical"`
	ReworkCured      int64          `json:"rework_cured"`
	ReworkScrapped   int64          `json:"rework_scrapped"`
}

func monthRange(c *fiber.Ctx) (time.Time, time.Time, int, int, error) {
	year := c.QueryInt("year")
	month := c.QueryInt("month")
	if year < 2000 || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, 0, 0, fiber.NewError(fiber.StatusBadRequest, "year ve month parametreleri zorunlu")
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	return first, next, year, month, nil
}

func buildMonthlySummary(first, next time.Time, year, month int) (*MonthlySummary, error) {
	summary := &MonthlySummary{Year: year, Month: month}

	// Aşama bazında onaylı üretim
	for _, stage := range models.StageOrder {
		if stage == models.StageRework {
			continue
		}
		var row struct {
			LogCount    int64
			QuantityOut int64
		}
		err := database.DB.Model(&models.ProductionLog{}).
			Where("stage = ? AND approval_status = ? AND approved_at >= ? AND approved_at < ?",
				stage, models.ApprovalApproved, first, next).
			Select("COUNT(*) AS log_count, COALESCE(SUM(quantity_out), 0) AS quantity_out").
			Scan(&row).Error
		if err != nil {
			return nil, err
		}
		summary.Stages = append(summary.Stages, StageSummary{
			Stage:       stage,
			LogCount:    row.LogCount,
			QuantityOut: row.QuantityOut,
		})
	}

	if err := database.DB.Model(&models.Batch{}).
		Where("created_at >= ? AND created_at < ?", first, next).
		Count(&summary.BatchesCreated).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Batch{}).
		Where("status = ? AND updated_at >= ? AND updated_at < ?", models.BatchStatusCompleted, first, next).
		Count(&summary.BatchesCompleted).Error; err != nil {
		return nil, err
	}

	severityTargets := map[models.DefectSeverity]*int64{
		models.SeverityMinor:    &summary.DefectsMinor,
		models.SeverityMajor:    &summary.DefectsMajor,
		models.SeverityCritical: &summary.DefectsCritical,
	}
	for severity, target := range severityTargets {
		var total int64
		err := database.DB.Model(&models.DefectRecord{}).
			Where("severity = ? AND created_at >= ? AND created_at < ?", severity, first, next).
			Select("COALESCE(SUM(quantity), 0)").
			Scan(&total).Error
		if err != nil {
			return nil, err
		}
		*target = total
	}

	var reworkRow struct {
		Cured    int64
		Scrapped int64
	}
	err := database.DB.Model(&models.ReworkRecord{}).
		Where("approval_status = ? AND approved_at >= ? AND approved_at < ?",
			models.ApprovalApproved, first, next).
		Select("COALESCE(SUM(cured_quantity), 0) AS cured, COALESCE(SUM(scrapped_quantity), 0) AS scrapped").
		Scan(&reworkRow).Error
	if err != nil {
		return nil, err
	}
	summary.ReworkCured = reworkRow.Cured
	summary.ReworkScrapped = reworkRow.Scrapped

	return summary, nil
}

// GET /api/reports/production/monthly?year=2026&month=8
func MonthlyProductionReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		first, next, year, month, err := monthRange(c)
		if err != nil {
			return err
		}

		summary, err := buildMonthlySummary(first, next, year, month)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor hesaplanamadı")
		}

		return c.JSON(summary)
	}
}

// GET /api/reports/production/monthly/export?year=2026&month=8
// Aylık özet Excel dosyası olarak indirilir
func ExportMonthlyProductionReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		first, next, year, month, err := monthRange(c)
		if err != nil {
			return err
		}

		summary, err := buildMonthlySummary(first, next, year, month)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor hesaplanamadı")
		}

		f := excelize.NewFile()
		sheet := "Üretim Raporu"
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}
		f.SetActiveSheet(idx)
		f.DeleteSheet("Sheet1")

		f.SetCellValue(sheet, "A1", fmt.Sprintf("Aylık Üretim Raporu %d/%d", month, year))

		f.SetCellValue(sheet, "A3", "Aşama")
		f.SetCellValue(sheet, "B3", "Onaylı Kayıt")
		f.SetCellValue(sheet, "C3", "Çıkan Miktar")
		row := 4
		for _, s := range summary.Stages {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), string(s.Stage))
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), s.LogCount)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), s.QuantityOut)
			row++
		}

		row++
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Açılan Parti")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), summary.BatchesCreated)
		row++
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Tamamlanan Parti")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), summary.BatchesCompleted)
		row++
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Kusur (Minor/Major/Critical)")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row),
			fmt.Sprintf("%d / %d / %d", summary.DefectsMinor, summary.DefectsMajor, summary.DefectsCritical))
		row++
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Tadilat (Kurtarılan/Hurda)")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row),
			fmt.Sprintf("%d / %d", summary.ReworkCured, summary.ReworkScrapped))

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası yazılamadı")
		}

		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="uretim-raporu-%d-%02d.xlsx"`, year, month))
		return c.Send(buf.Bytes())
	}
}
