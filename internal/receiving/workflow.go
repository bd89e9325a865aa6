package receiving

import (
	"malkabul-backend/internal/models"
)

// stepOrder: Adımların sıra numarası. Geçişler her zaman ileri doğru;
// bir adım asla geri dönmez.
var stepOrder = map[models.WorkflowStep]int{
	models.StepNotStarted:        0,
	models.StepVerify:            1,
	models.StepConfirmPricing:    2,
	models.StepReadyForInventory: 3,
	models.StepCompleted:         4,
}

// StepIndex: Adımın sıra numarası (bilinmeyen adım için -1)
func StepIndex(step models.WorkflowStep) int {
	if idx, ok := stepOrder[step]; ok {
		return idx
	}
	return -1
}

// WorkflowPolicy: Mod bazlı adım ilerletme kuralları. Mod ayrımı
// yalnızca burada yaşar; motorun geri kalanı moda bakmaz.
type WorkflowPolicy interface {
	// NextStep: Geçerli adımdan bir sonraki adımı döner. İzinli geçiş
	// yoksa InvalidTransitionError döner.
	NextStep(current models.WorkflowStep) (models.WorkflowStep, error)
	// CanCommit: add-to-inventory işleminin izinli olduğu adım mı?
	CanCommit(current models.WorkflowStep) bool
}

// PolicyFor: Sevkiyatın moduna göre politika seç
func PolicyFor(mode models.WorkflowMode, autoAddToInventory bool) WorkflowPolicy {
	if mode == models.ModeThreeStep {
		return threeStepPolicy{}
	}
	return simplePolicy{autoAdd: autoAddToInventory}
}

// simplePolicy: verify -> completed. auto_add_to_inventory kapalıysa
// doğrulama ready_for_inventory'de durur; commit ayrı istekle gelir.
type simplePolicy struct {
	autoAdd bool
}

func (p simplePolicy) NextStep(current models.WorkflowStep) (models.WorkflowStep, error) {
	switch current {
	case models.StepVerify:
		if p.autoAdd {
			return models.StepCompleted, nil
		}
		return models.StepReadyForInventory, nil
	case models.StepReadyForInventory:
		return models.StepCompleted, nil
	}
	return "", &InvalidTransitionError{Step: current, Operation: "complete"}
}

func (p simplePolicy) CanCommit(current models.WorkflowStep) bool {
	return current == models.StepReadyForInventory
}

// threeStepPolicy: verify -> confirm_pricing -> ready_for_inventory ->
// completed. Commit yalnızca ready_for_inventory adımında.
type threeStepPolicy struct{}

func (threeStepPolicy) NextStep(current models.WorkflowStep) (models.WorkflowStep, error) {
	switch current {
	case models.StepVerify:
		return models.StepConfirmPricing, nil
	case models.StepConfirmPricing:
		return models.StepReadyForInventory, nil
	case models.StepReadyForInventory:
		return models.StepCompleted, nil
	}
	return "", &InvalidTransitionError{Step: current, Operation: "complete"}
}

func (threeStepPolicy) CanCommit(current models.WorkflowStep) bool {
	return current == models.StepReadyForInventory
}
