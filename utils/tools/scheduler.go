package tools

import (
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"pivotdash/interfaces"
	"pivotdash/model"
)

type AlertCondition struct {
	Condition func(df *model.Dataframe) bool
	Message   func(df *model.Dataframe) string
}

// Scheduler fires one-shot alerts when a dataframe condition becomes true.
// Triggered conditions are dropped; failed sends stay queued for retry.
type Scheduler struct {
	pair            string
	alertConditions []AlertCondition
}

func NewScheduler(pair string) *Scheduler {
	return &Scheduler{pair: pair}
}

func (s *Scheduler) AlertWhen(message func(df *model.Dataframe) string, condition func(df *model.Dataframe) bool) {
	s.alertConditions = append(
		s.alertConditions,
		AlertCondition{Condition: condition, Message: message},
	)
}

func (s *Scheduler) Update(df *model.Dataframe, notifier interfaces.Notifier) {
	s.alertConditions = lo.Filter[AlertCondition](s.alertConditions, func(ac AlertCondition, _ int) bool {
		if ac.Condition(df) {
			if err := notifier.SendNotification(ac.Message(df)); err != nil {
				log.Error(err)
				return true
			}
			return false
		}
		return true
	})
}
