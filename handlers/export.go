package handlers

import (
	"log"
	"net/http"

	"github.com/xuri/excelize/v2"

	"p9e.in/weibao/models"
)

// ExportWorkPlans writes the unified work-plan listing as an xlsx
// download. Honors the same query filters as the listing endpoint.
func ExportWorkPlans(w http.ResponseWriter, r *http.Request) {
	var items []models.WorkPlan
	if err := workPlanQuery(r).Order("created_at DESC").Find(&items).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	f := excelize.NewFile()
	sheet := "工作计划"
	index, err := f.NewSheet(sheet)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})

	headers := []string{"计划编号", "计划类型", "项目编号", "项目名称", "客户名称",
		"计划开始", "计划结束", "负责人", "状态", "备注", "已填报", "总数", "计划名称", "设备名称"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, p := range items {
		values := []interface{}{p.PlanID, p.PlanType, p.ProjectID, p.ProjectName, p.ClientName,
			p.PlanStartDate.String(), p.PlanEndDate.String(), p.Personnel, p.Status, p.Remarks,
			p.FilledCount, p.TotalCount, p.PlanName, p.EquipmentName}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="work_plans.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Println("export: writing workbook:", err)
	}
}
