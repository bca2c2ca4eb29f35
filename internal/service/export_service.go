package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"vobiss-inventory/backend/internal/model"
	"vobiss-inventory/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRequests   = errors.New("没有可导出的申请单")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出申请单台账为 Excel (.xlsx)，一行一单
//   - 以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 只做数据台账，不做打印排版
type ExportService interface {
	// ExportRequests 导出申请单台账；status 为空表示全部
	ExportRequests(ctx context.Context, status string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var exportHeader = []string{
	"单号", "类型", "状态", "项目名称", "班组长", "创建人",
	"领用人", "发料人", "明细行数", "创建时间", "批准时间", "完成时间",
}

func (s *exportService) ExportRequests(ctx context.Context, status string) (*bytes.Buffer, string, error) {
	requests, err := s.repo.Request.List(ctx, status)
	if err != nil {
		s.logger.Error("查询申请单列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(requests) == 0 {
		return nil, "", ErrExportNoRequests
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "申请单台账"
	f.SetSheetName("Sheet1", sheet)

	for col, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			s.logger.Error("写入表头失败", zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	for row, r := range requests {
		values := []interface{}{
			r.Code,
			kindLabel(r.Kind),
			r.Status,
			r.ProjectName,
			r.TeamLeaderName,
			r.CreatedBy,
			r.ReceivedBy,
			deref(r.ReleaseBy),
			len(r.Items),
			r.CreatedAt.Format("2006-01-02 15:04"),
			formatTimePtr(r.ApprovedAt),
			formatTimePtr(r.CompletedAt),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				s.logger.Error("写入数据行失败", zap.Error(err))
				return nil, "", ErrExportGenerateFail
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("序列化 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("requests-%s.xlsx", time.Now().Format("20060102"))
	if status != "" {
		filename = fmt.Sprintf("requests-%s-%s.xlsx", status, time.Now().Format("20060102"))
	}

	return buf, filename, nil
}

func kindLabel(kind string) string {
	if kind == model.RequestKindReturn {
		return "退料"
	}
	return "领料"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
