package receiving

import (
	"testing"

	"malkabul-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportIssue_Defaults(t *testing.T) {
	db := newTestDB(t)
	shipment := seedShipment(t, db, models.ModeSimple, item("SKU-1", "8690001234562", 5))

	issue, err := ReportIssue(db, IssueReport{
		ShipmentID:  shipment.ID,
		Type:        models.IssueDamaged,
		Description: "Koli ezik geldi",
		ReportedBy:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SeverityMinor, issue.Severity)
	assert.Equal(t, 1, issue.QuantityAffected)
	assert.Equal(t, models.ResolutionOpen, issue.ResolutionStatus)
	assert.False(t, issue.ReportedAt.IsZero())
}

func TestReportIssue_ItemScoped(t *testing.T) {
	db := newTestDB(t)
	shipment := seedShipment(t, db, models.ModeSimple, item("SKU-1", "8690001234562", 5))
	itemID := shipment.Items[0].ID

	issue, err := ReportIssue(db, IssueReport{
		ShipmentID:       shipment.ID,
		PendingItemID:    &itemID,
		Type:             models.IssueQuantityMismatch,
		Severity:         models.SeverityMajor,
		QuantityAffected: 2,
		ReportedBy:       3,
	})
	require.NoError(t, err)
	require.NotNil(t, issue.PendingItemID)
	assert.Equal(t, itemID, *issue.PendingItemID)
}

func TestReportIssue_ItemFromAnotherShipment(t *testing.T) {
	db := newTestDB(t)
	first := seedShipment(t, db, models.ModeSimple, item("SKU-1", "8690001234562", 5))
	second := seedShipment(t, db, models.ModeSimple, item("SKU-2", "8690009876545", 5))

	foreignItem := second.Items[0].ID
	_, err := ReportIssue(db, IssueReport{
		ShipmentID:    first.ID,
		PendingItemID: &foreignItem,
		Type:          models.IssueDamaged,
		ReportedBy:    3,
	})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestReportIssue_TerminalShipmentRejected(t *testing.T) {
	db := newTestDB(t)
	shipment := seedShipment(t, db, models.ModeSimple, item("SKU-1", "8690001234562", 5))
	require.NoError(t, db.Model(shipment).Updates(map[string]interface{}{
		"status":        models.StatusCompleted,
		"workflow_step": models.StepCompleted,
	}).Error)

	_, err := ReportIssue(db, IssueReport{
		ShipmentID: shipment.ID,
		Type:       models.IssueDamaged,
		ReportedBy: 3,
	})

	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "issue", transition.Operation)
}

func TestResolveIssue(t *testing.T) {
	db := newTestDB(t)
	shipment := seedShipment(t, db, models.ModeSimple, item("SKU-1", "8690001234562", 5))

	issue, err := ReportIssue(db, IssueReport{
		ShipmentID: shipment.ID,
		Type:       models.IssueDamaged,
		Severity:   models.SeverityCritical,
		ReportedBy: 3,
	})
	require.NoError(t, err)

	resolved, err := ResolveIssue(db, issue.ID, models.ResolutionVendorContacted, "Tedarikçi arandı, iade onaylandı", 1)
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionVendorContacted, resolved.ResolutionStatus)
	assert.Equal(t, "Tedarikçi arandı, iade onaylandı", resolved.ResolutionNotes)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, uint(1), *resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)
}

func TestResolveIssue_InvalidStatus(t *testing.T) {
	db := newTestDB(t)

	_, err := ResolveIssue(db, 1, models.IssueResolution("kapandi"), "", 1)
	assert.Error(t, err)

	_, err = ResolveIssue(db, 1, models.ResolutionOpen, "", 1)
	assert.Error(t, err)
}

func TestResolveIssue_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := ResolveIssue(db, 42, models.ResolutionResolved, "", 1)
	assert.ErrorIs(t, err, ErrIssueNotFound)
}

func TestOpenCriticalIssues(t *testing.T) {
	issues := []models.ShipmentIssue{
		{Severity: models.SeverityCritical, ResolutionStatus: models.ResolutionOpen},
		{Severity: models.SeverityCritical, ResolutionStatus: models.ResolutionResolved},
		{Severity: models.SeverityMinor, ResolutionStatus: models.ResolutionOpen},
	}
	assert.Equal(t, 1, OpenCriticalIssues(issues))
	assert.Equal(t, 0, OpenCriticalIssues(nil))
}
