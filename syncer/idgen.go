// Package syncer keeps the three work-order stores, the maintenance
// plan store and the denormalized work-plan index consistent: business
// key generation, bidirectional write propagation and the batch
// reconciliation pass.
package syncer

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"p9e.in/weibao/models"
)

const dateKeyLayout = "20060102"

// NextOrderNo hands out the next business key for an order type on a
// project/day: <prefix>-<project>-<yyyymmdd>-<NN>. Must be called
// inside the transaction that inserts the order so the counter row
// stays locked until the insert commits.
func NextOrderNo(tx *gorm.DB, prefix, projectID string, date time.Time) (string, error) {
	seq, err := nextSeq(tx, prefix, projectID, date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s-%02d", prefix, projectID, date.Format(dateKeyLayout), seq), nil
}

// NextMaintenancePlanID hands out <WB>-<yyyymmdd>-<NNN> keys.
// Maintenance plans are not scoped to a project, so the counter keys
// on prefix and day alone.
func NextMaintenancePlanID(tx *gorm.DB, date time.Time) (string, error) {
	seq, err := nextSeq(tx, models.PrefixMaintenance, "", date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%03d", models.PrefixMaintenance, date.Format(dateKeyLayout), seq), nil
}

// nextSeq bumps the per-(prefix, project, day) counter row and returns
// the new value. The counter row is created on first use; the bump is
// a single UPDATE ... SET seq = seq + 1, so a concurrent writer on the
// same key blocks on the row lock instead of reading a stale count.
func nextSeq(tx *gorm.DB, prefix, projectID string, date time.Time) (int, error) {
	dateKey := date.Format(dateKeyLayout)

	row := models.OrderSequence{Prefix: prefix, ProjectID: projectID, DateKey: dateKey}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return 0, err
	}

	res := tx.Model(&models.OrderSequence{}).
		Where("prefix = ? AND project_id = ? AND date_key = ?", prefix, projectID, dateKey).
		UpdateColumn("seq", gorm.Expr("seq + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}

	var out models.OrderSequence
	if err := tx.Where("prefix = ? AND project_id = ? AND date_key = ?", prefix, projectID, dateKey).
		First(&out).Error; err != nil {
		return 0, err
	}
	return out.Seq, nil
}
