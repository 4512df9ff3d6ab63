package services

import (
	"fmt"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/realtime"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// EscalationService is the threshold state machine over a user's daily
// detection count. States per day: clear, warned (count reached the warn
// threshold), locked (count reached the lock threshold, terminal).
type EscalationService struct {
	logs          repositories.DetectionLogRepository
	users         repositories.UserRepository
	dispatcher    *Dispatcher
	pusher        Pusher
	warnThreshold int64
	lockThreshold int64
}

// NewEscalationService creates a new EscalationService with the given thresholds
func NewEscalationService(
	logs repositories.DetectionLogRepository,
	users repositories.UserRepository,
	dispatcher *Dispatcher,
	pusher Pusher,
	warnThreshold, lockThreshold int64,
) *EscalationService {
	return &EscalationService{
		logs:          logs,
		users:         users,
		dispatcher:    dispatcher,
		pusher:        pusher,
		warnThreshold: warnThreshold,
		lockThreshold: lockThreshold,
	}
}

// RecordDetection ingests one detection event and applies the transition
// rule. Banned users are rejected with ErrForbidden before anything is
// written, which makes the locked state terminal for the day: once locked,
// further events cannot produce notifications.
func (s *EscalationService) RecordDetection(userID uint, tool string) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return ErrNotFound
	}
	if user.IsBanned() {
		return ErrForbidden
	}

	if err := s.logs.CreateLog(&models.DetectionLog{UserID: userID, Tool: tool}); err != nil {
		return err
	}

	count, err := s.logs.CountForUserToday(userID)
	if err != nil {
		return err
	}

	switch {
	case count >= s.lockThreshold:
		return s.lock(user, count)
	case count == s.warnThreshold:
		// Exactly the threshold, not >=, so the warning fires once
		// instead of on every event until the lock.
		return s.warn(user, count)
	}
	return nil
}

func (s *EscalationService) warn(user *models.User, count int64) error {
	if err := s.dispatcher.NotifySecurityWarning(user.ID, count); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to create security warning notification")
	}
	return s.dispatcher.NotifyAllAdmins(
		"User warned",
		fmt.Sprintf("User %s reached %d security detections today and was warned.", user.Username, count),
		map[string]interface{}{"affected_user_id": user.ID, "count": count},
	)
}

func (s *EscalationService) lock(user *models.User, count int64) error {
	if err := s.users.UpdateStatus(user.ID, models.StatusBanned); err != nil {
		return err
	}

	s.pusher.PushToUser(user.ID, realtime.EventAccountBanned, nil)

	if err := s.dispatcher.NotifyAccountLocked(user.ID); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to create account locked notification")
	}
	return s.dispatcher.NotifyAllAdmins(
		"User locked",
		fmt.Sprintf("User %s was locked after %d security detections today.", user.Username, count),
		map[string]interface{}{"affected_user_id": user.ID, "count": count},
	)
}
