package requirement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cropconnect/database/repository"
	bidRepo "cropconnect/database/repository/bid"
	bookingRepo "cropconnect/database/repository/booking"
	requirementRepo "cropconnect/database/repository/requirement"
	userRepo "cropconnect/database/repository/user"
	"cropconnect/models"
	"cropconnect/services/booking"
	"cropconnect/services/notification"
	"cropconnect/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRequirementService implements RequirementService.
type DefaultRequirementService struct {
	Requirements requirementRepo.RequirementRepository
	Bids         bidRepo.BidRepository
	Bookings     bookingRepo.BookingRepository
	Users        userRepo.UserRepository
	Tx           repository.TxRunner
	Notifier     notification.Emitter
	Reminders    booking.ReminderScheduler // optional
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultRequirementService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultRequirementService) Post(ctx context.Context, farmer models.Actor, in models.RequirementInput) (*models.Requirement, error) {
	if farmer.Role != models.RoleFarmer {
		return nil, utils.Forbidden("only farmers can post requirements")
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	req := &models.Requirement{
		ID:              uuid.New().String(),
		Kind:            in.Kind,
		FarmerID:        farmer.ID,
		WorkType:        strings.TrimSpace(in.WorkType),
		LandSize:        in.LandSize,
		DurationDays:    in.DurationDays,
		WorkersNeeded:   in.WorkersNeeded,
		Location:        in.Location,
		Date:            in.Date,
		MaxBudget:       in.MaxBudget,
		WagePerDay:      in.WagePerDay,
		PreferredGender: in.PreferredGender,
		Description:     strings.TrimSpace(in.Description),
		Status:          models.RequirementOpen,
	}
	if err := s.Requirements.Create(ctx, req); err != nil {
		return nil, utils.Internal("failed to save requirement", err)
	}

	s.fanOut(ctx, req)
	return req, nil
}

func validateInput(in *models.RequirementInput) error {
	if !in.Kind.Valid() {
		return utils.Validation("kind must be tractor or worker")
	}
	if strings.TrimSpace(in.WorkType) == "" {
		return utils.Validation("workType is required")
	}
	if strings.TrimSpace(in.Location.District) == "" {
		return utils.Validation("location.district is required")
	}
	if in.Date.IsZero() {
		return utils.Validation("date is required")
	}

	switch in.Kind {
	case models.ServiceTractor:
		if in.MaxBudget <= 0 {
			return utils.Validation("maxBudget must be greater than zero")
		}
		if in.LandSize < 0 {
			return utils.Validation("landSize cannot be negative")
		}
		in.PreferredGender = models.PreferAny
	case models.ServiceWorker:
		if in.WagePerDay <= 0 {
			return utils.Validation("wagePerDay must be greater than zero")
		}
		if in.DurationDays <= 0 {
			in.DurationDays = 1
		}
		if in.WorkersNeeded <= 0 {
			in.WorkersNeeded = 1
		}
		switch in.PreferredGender {
		case "":
			in.PreferredGender = models.PreferAny
		case models.PreferAny, models.PreferMale, models.PreferFemale:
		default:
			return utils.Validation("preferredGender must be any, male or female")
		}
	}
	return nil
}

// fanOut tells matching providers about a new requirement. Failures are logged only.
func (s *DefaultRequirementService) fanOut(ctx context.Context, req *models.Requirement) {
	role := models.RoleTractorOwner
	var genders []models.Gender
	if req.Kind == models.ServiceWorker {
		role = models.RoleWorker
		switch req.PreferredGender {
		case models.PreferMale:
			genders = []models.Gender{models.GenderMale}
		case models.PreferFemale:
			genders = []models.Gender{models.GenderFemale}
		}
	}

	candidates, err := s.Users.FindCandidates(ctx, role, req.Location.District, genders)
	if err != nil {
		s.Logger.Warn("requirement fan-out skipped", zap.String("requirementId", req.ID), zap.Error(err))
		return
	}
	for _, c := range candidates {
		if c.ID == req.FarmerID {
			continue
		}
		s.Notifier.Emit(ctx, models.NotificationInput{
			RecipientID: c.ID,
			Type:        models.NotifyRequirementPosted,
			Title:       "New requirement near you",
			Message:     fmt.Sprintf("%s needed in %s on %s.", req.WorkType, req.Location.District, req.Date.Format("02 Jan 2006")),
			Refs:        models.NotificationRefs{RequirementID: req.ID, UserID: req.FarmerID},
		})
	}
	s.Logger.Debug("requirement fan-out", zap.String("requirementId", req.ID), zap.Int("candidates", len(candidates)))
}

func (s *DefaultRequirementService) List(ctx context.Context, viewer *models.Actor, filter models.RequirementFilter) ([]models.RequirementView, error) {
	if filter.Status == "" {
		filter.Status = models.RequirementOpen
	}
	filter.FarmerID = ""
	filter.Genders = nil

	var bidOn map[string]bool
	if viewer != nil {
		switch viewer.Role {
		case models.RoleWorker:
			worker, err := s.Users.GetByID(ctx, viewer.ID)
			if err != nil {
				return nil, mapError(err, "user")
			}
			filter.Genders = []models.GenderPreference{models.PreferAny}
			if worker.Gender == models.GenderMale || worker.Gender == models.GenderFemale {
				filter.Genders = append(filter.Genders, models.GenderPreference(worker.Gender))
			}
		case models.RoleTractorOwner:
			bids, err := s.Bids.ListByBidder(ctx, viewer.ID)
			if err != nil {
				return nil, utils.Internal("failed to load bids", err)
			}
			bidOn = make(map[string]bool, len(bids))
			for _, b := range bids {
				bidOn[b.RequirementID] = true
			}
		}
	}

	reqs, err := s.Requirements.List(ctx, filter)
	if err != nil {
		return nil, utils.Internal("failed to list requirements", err)
	}

	views := make([]models.RequirementView, 0, len(reqs))
	for i := range reqs {
		view := models.RequirementView{Requirement: reqs[i]}
		if viewer != nil {
			switch viewer.Role {
			case models.RoleWorker:
				view.HasApplied = reqs[i].Applicant(viewer.ID) != nil
			case models.RoleTractorOwner:
				view.HasApplied = bidOn[reqs[i].ID]
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *DefaultRequirementService) Get(ctx context.Context, id string) (*models.Requirement, error) {
	req, err := s.Requirements.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "requirement")
	}
	return req, nil
}

func (s *DefaultRequirementService) ListMine(ctx context.Context, farmer models.Actor) ([]models.Requirement, error) {
	reqs, err := s.Requirements.List(ctx, models.RequirementFilter{FarmerID: farmer.ID})
	if err != nil {
		return nil, utils.Internal("failed to list requirements", err)
	}
	return reqs, nil
}

// loadOwned fetches a requirement and checks that actor owns it.
func (s *DefaultRequirementService) loadOwned(ctx context.Context, id string, actor models.Actor) (*models.Requirement, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FarmerID != actor.ID {
		return nil, utils.Forbidden("only the farmer who posted this requirement can change it")
	}
	return req, nil
}

func (s *DefaultRequirementService) Withdraw(ctx context.Context, id string, actor models.Actor) error {
	req, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return err
	}
	if req.Status != models.RequirementOpen {
		return utils.InvalidState("requirement is %s and can no longer be withdrawn", req.Status)
	}
	if req.HiredCount > 0 {
		return utils.InvalidState("workers were already hired for this requirement; cancel it instead")
	}

	var waiting []string
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.Requirements.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := s.Requirements.DeleteIfOpen(ctx, req.ID); err != nil {
			return err
		}
		cancelled, err := s.Bids.ResolvePending(ctx, req.ID, "", models.BidCancelled)
		if err != nil {
			return err
		}
		waiting = append(bidders(cancelled), pendingApplicants(current)...)
		return nil
	})
	if err != nil {
		return mapError(err, "requirement")
	}

	s.notifyClosed(ctx, req, waiting, "withdrawn")
	return nil
}

func (s *DefaultRequirementService) Cancel(ctx context.Context, id string, actor models.Actor) (*models.Requirement, error) {
	req, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequirementOpen {
		return nil, utils.InvalidState("requirement is %s and can no longer be cancelled", req.Status)
	}

	var waiting []string
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Requirements.SetStatus(ctx, req.ID, []models.RequirementStatus{models.RequirementOpen}, models.RequirementCancelled); err != nil {
			return err
		}
		cancelled, err := s.Bids.ResolvePending(ctx, req.ID, "", models.BidCancelled)
		if err != nil {
			return err
		}
		rejected, err := s.Requirements.RejectPendingApplicants(ctx, req.ID, "")
		if err != nil {
			return err
		}
		waiting = append(bidders(cancelled), rejected...)
		return nil
	})
	if err != nil {
		return nil, mapError(err, "requirement")
	}

	s.notifyClosed(ctx, req, waiting, "cancelled")
	req.Status = models.RequirementCancelled
	return req, nil
}

func bidders(bids []models.Bid) []string {
	ids := make([]string, 0, len(bids))
	for _, b := range bids {
		ids = append(ids, b.BidderID)
	}
	return ids
}

func pendingApplicants(req *models.Requirement) []string {
	var ids []string
	for _, a := range req.Applicants {
		if a.Status == models.ApplicationPending {
			ids = append(ids, a.WorkerID)
		}
	}
	return ids
}

func (s *DefaultRequirementService) notifyClosed(ctx context.Context, req *models.Requirement, recipients []string, how string) {
	for _, id := range recipients {
		s.Notifier.Emit(ctx, models.NotificationInput{
			RecipientID: id,
			Type:        models.NotifyRequirementCancelled,
			Title:       "Requirement closed",
			Message:     fmt.Sprintf("The %s requirement in %s was %s by the farmer.", req.WorkType, req.Location.District, how),
			Refs:        models.NotificationRefs{RequirementID: req.ID, UserID: req.FarmerID},
		})
	}
}

func mapError(err error, what string) error {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound("%s not found", what)
	case errors.Is(err, repository.ErrStateChanged):
		return utils.InvalidState("%s was changed by another request", what)
	case errors.Is(err, repository.ErrDuplicate):
		return utils.Conflict("%s already exists", what)
	default:
		return utils.Internal(what+" update failed", err)
	}
}
