package database

import (
	"whitegate/internal/domain"
)

// AppendOperationLog records one audit entry. Failures are reported but must
// never block the action being audited.
func AppendOperationLog(entry domain.OperationLog) error {
	return DB.Create(&entry).Error
}

// GetOperationLogs returns audit entries, newest first.
func GetOperationLogs(limit, offset int) ([]domain.OperationLog, error) {
	var logs []domain.OperationLog
	err := DB.
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
