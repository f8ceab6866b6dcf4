package requirement

import (
	"context"
	"errors"
	"fmt"
	"math"

	"cropconnect/database/repository"
	"cropconnect/models"
	"cropconnect/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultRequirementService) Apply(ctx context.Context, id string, worker models.Actor) (*models.Requirement, error) {
	if worker.Role != models.RoleWorker {
		return nil, utils.Forbidden("only workers can apply to requirements")
	}
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Kind != models.ServiceWorker {
		return nil, utils.InvalidState("requirement does not take worker applications")
	}
	if req.Status != models.RequirementOpen {
		return nil, utils.InvalidState("requirement is no longer open")
	}
	if req.Applicant(worker.ID) != nil {
		return nil, utils.Conflict("you have already applied to this requirement")
	}
	profile, err := s.Users.GetByID(ctx, worker.ID)
	if err != nil {
		return nil, mapError(err, "user")
	}
	if !req.PreferredGender.Allows(profile.Gender) {
		return nil, utils.InvalidState("requirement is restricted to %s workers", req.PreferredGender)
	}

	applicant := models.Applicant{
		WorkerID:  worker.ID,
		Status:    models.ApplicationPending,
		AppliedAt: s.now(),
	}
	if err := s.Requirements.AddApplicant(ctx, id, applicant); err != nil {
		if !errors.Is(err, repository.ErrStateChanged) {
			return nil, mapError(err, "requirement")
		}
		// Lost a race: either the requirement closed or this worker applied concurrently.
		current, getErr := s.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if current.Applicant(worker.ID) != nil {
			return nil, utils.Conflict("you have already applied to this requirement")
		}
		return nil, utils.InvalidState("requirement is no longer open")
	}
	req.Applicants = append(req.Applicants, applicant)

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: req.FarmerID,
		Type:        models.NotifyApplicationReceived,
		Title:       "New application",
		Message:     fmt.Sprintf("%s applied for your %s requirement.", profile.Name, req.WorkType),
		Refs:        models.NotificationRefs{RequirementID: req.ID, UserID: worker.ID},
	})
	return req, nil
}

// AcceptApplicant hires one applicant and creates a confirmed booking for them. The requirement
// stays open until WorkersNeeded applicants are hired; the hire that fills the last slot closes it
// and rejects everyone still pending, in the same transaction.
func (s *DefaultRequirementService) AcceptApplicant(ctx context.Context, id, workerID string, farmer models.Actor) (*models.Booking, error) {
	req, err := s.loadOwned(ctx, id, farmer)
	if err != nil {
		return nil, err
	}
	if req.Kind != models.ServiceWorker {
		return nil, utils.InvalidState("requirement does not take worker applications")
	}
	applicant := req.Applicant(workerID)
	if applicant == nil {
		return nil, utils.NotFound("application not found")
	}
	if applicant.Status != models.ApplicationPending {
		return nil, utils.InvalidState("application is already %s", applicant.Status)
	}
	if req.Status != models.RequirementOpen {
		return nil, utils.InvalidState("requirement is no longer open")
	}

	now := s.now()
	bk := &models.Booking{
		ID:            uuid.New().String(),
		FarmerID:      req.FarmerID,
		ProviderID:    workerID,
		ServiceType:   models.ServiceWorker,
		RequirementID: req.ID,
		WorkType:      req.WorkType,
		Date:          req.Date,
		Duration:      float64(req.DurationDays),
		TotalCost:     math.Round(req.WagePerDay * float64(req.DurationDays)),
		Location:      req.Location,
		Status:        models.BookingConfirmed,
		PaymentStatus: models.PaymentPending,
	}

	var (
		hired    *models.Requirement
		rejected []string
	)
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		rejected = nil
		hired, err = s.Requirements.HireApplicant(ctx, req.ID, workerID, bk.ID)
		if err != nil {
			return err
		}
		if err := s.Bookings.Create(ctx, bk); err != nil {
			return err
		}
		if hired.HiredCount < hired.Slots() {
			return nil
		}
		if err := s.Requirements.Accept(ctx, req.ID, workerID, now); err != nil {
			return err
		}
		rejected, err = s.Requirements.RejectPendingApplicants(ctx, req.ID, workerID)
		return err
	})
	if errors.Is(err, repository.ErrStateChanged) {
		return nil, utils.InvalidState("requirement is no longer open or the application was already decided")
	}
	if err != nil {
		return nil, mapError(err, "requirement")
	}
	s.Logger.Info("worker hired",
		zap.String("requirementId", req.ID),
		zap.String("workerId", workerID),
		zap.Int("hired", hired.HiredCount),
		zap.Int("needed", hired.Slots()))

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: workerID,
		Type:        models.NotifyApplicationAccepted,
		Title:       "Application accepted",
		Message:     fmt.Sprintf("You were hired for %s on %s.", req.WorkType, req.Date.Format("02 Jan 2006")),
		Refs:        models.NotificationRefs{RequirementID: req.ID, BookingID: bk.ID, UserID: req.FarmerID},
	})
	for _, other := range rejected {
		s.Notifier.Emit(ctx, models.NotificationInput{
			RecipientID: other,
			Type:        models.NotifyApplicationRejected,
			Title:       "Application not selected",
			Message:     fmt.Sprintf("All positions for %s have been filled.", req.WorkType),
			Refs:        models.NotificationRefs{RequirementID: req.ID},
		})
	}
	if s.Reminders != nil {
		if err := s.Reminders.ScheduleBookingReminder(ctx, bk); err != nil {
			s.Logger.Warn("failed to schedule reminder", zap.String("bookingId", bk.ID), zap.Error(err))
		}
	}
	return bk, nil
}

func (s *DefaultRequirementService) RejectApplicant(ctx context.Context, id, workerID string, farmer models.Actor) (*models.Requirement, error) {
	req, err := s.loadOwned(ctx, id, farmer)
	if err != nil {
		return nil, err
	}
	applicant := req.Applicant(workerID)
	if applicant == nil {
		return nil, utils.NotFound("application not found")
	}
	if applicant.Status != models.ApplicationPending {
		return nil, utils.InvalidState("application is already %s", applicant.Status)
	}

	err = s.Requirements.SetApplicantStatus(ctx, req.ID, workerID, models.ApplicationPending, models.ApplicationRejected, "")
	if err != nil {
		return nil, mapError(err, "application")
	}
	applicant.Status = models.ApplicationRejected

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: workerID,
		Type:        models.NotifyApplicationRejected,
		Title:       "Application not selected",
		Message:     fmt.Sprintf("Your application for %s was declined.", req.WorkType),
		Refs:        models.NotificationRefs{RequirementID: req.ID},
	})
	return req, nil
}
