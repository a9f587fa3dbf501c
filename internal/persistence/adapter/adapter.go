// Package adapter bridges the application layer's repository interfaces
// (which return the freshly persisted record alongside an error) onto the
// concrete persistence repositories (which mutate storage and return a bare
// error), converting between application and persistence model types in
// both directions.
package adapter

import (
	"context"
	"errors"

	"github.com/example/meetingverify/internal/application"
	"github.com/example/meetingverify/internal/persistence"
)

// RoomRepository adapts persistence.RoomRepository to application.RoomRepository.
type RoomRepository struct {
	repo persistence.RoomRepository
}

// NewRoomRepository wraps repo for use by application.RoomService.
func NewRoomRepository(repo persistence.RoomRepository) *RoomRepository {
	return &RoomRepository{repo: repo}
}

func (a *RoomRepository) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	return a.GetRoom(ctx, room.ID)
}

func (a *RoomRepository) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	return a.GetRoom(ctx, room.ID)
}

func (a *RoomRepository) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *RoomRepository) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

func (a *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	return a.repo.DeleteRoom(ctx, id)
}

// ParticipantRepository adapts persistence.ParticipantRepository to
// application.ParticipantRepository.
type ParticipantRepository struct {
	repo persistence.ParticipantRepository
}

// NewParticipantRepository wraps repo for use by application.ParticipantService.
func NewParticipantRepository(repo persistence.ParticipantRepository) *ParticipantRepository {
	return &ParticipantRepository{repo: repo}
}

func (a *ParticipantRepository) CreateParticipant(ctx context.Context, participant application.Participant) (application.Participant, error) {
	if err := a.repo.CreateParticipant(ctx, toPersistenceParticipant(participant)); err != nil {
		return application.Participant{}, err
	}
	return a.GetParticipant(ctx, participant.ID)
}

func (a *ParticipantRepository) UpdateParticipant(ctx context.Context, participant application.Participant) (application.Participant, error) {
	if err := a.repo.UpdateParticipant(ctx, toPersistenceParticipant(participant)); err != nil {
		return application.Participant{}, err
	}
	return a.GetParticipant(ctx, participant.ID)
}

func (a *ParticipantRepository) GetParticipant(ctx context.Context, id string) (application.Participant, error) {
	stored, err := a.repo.GetParticipant(ctx, id)
	if err != nil {
		return application.Participant{}, err
	}
	return toApplicationParticipant(stored), nil
}

func (a *ParticipantRepository) ListParticipants(ctx context.Context) ([]application.Participant, error) {
	models, err := a.repo.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}
	participants := make([]application.Participant, 0, len(models))
	for _, model := range models {
		participants = append(participants, toApplicationParticipant(model))
	}
	return participants, nil
}

func (a *ParticipantRepository) DeleteParticipant(ctx context.Context, id string) error {
	return a.repo.DeleteParticipant(ctx, id)
}

// MissingParticipantIDs satisfies application.ParticipantLookup: it reports
// which of the given ids have no matching participant record.
func (a *ParticipantRepository) MissingParticipantIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	missing := make([]string, 0)
	for _, id := range ids {
		if _, err := a.repo.GetParticipant(ctx, id); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				missing = append(missing, id)
				continue
			}
			return nil, err
		}
	}
	return missing, nil
}

// MeetingRepository adapts persistence.MeetingRepository to
// application.MeetingRepository.
type MeetingRepository struct {
	repo persistence.MeetingRepository
}

// NewMeetingRepository wraps repo for use by application.SchedulingService.
func NewMeetingRepository(repo persistence.MeetingRepository) *MeetingRepository {
	return &MeetingRepository{repo: repo}
}

func (a *MeetingRepository) CreateMeeting(ctx context.Context, meeting application.Meeting) (application.Meeting, error) {
	if err := a.repo.CreateMeeting(ctx, toPersistenceMeeting(meeting)); err != nil {
		return application.Meeting{}, err
	}
	return a.GetMeeting(ctx, meeting.ID)
}

func (a *MeetingRepository) UpdateMeeting(ctx context.Context, meeting application.Meeting) (application.Meeting, error) {
	if err := a.repo.UpdateMeeting(ctx, toPersistenceMeeting(meeting)); err != nil {
		return application.Meeting{}, err
	}
	return a.GetMeeting(ctx, meeting.ID)
}

func (a *MeetingRepository) GetMeeting(ctx context.Context, id string) (application.Meeting, error) {
	stored, err := a.repo.GetMeeting(ctx, id)
	if err != nil {
		return application.Meeting{}, err
	}
	return toApplicationMeeting(stored), nil
}

func (a *MeetingRepository) DeleteMeeting(ctx context.Context, id string) error {
	return a.repo.DeleteMeeting(ctx, id)
}

func (a *MeetingRepository) ListMeetings(ctx context.Context, filter application.MeetingFilter) ([]application.Meeting, error) {
	models, err := a.repo.ListMeetings(ctx, persistence.MeetingFilter{
		Status:      persistence.MeetingStatus(filter.Status),
		RoomID:      filter.RoomID,
		StartsAfter: filter.StartsAfter,
		EndsBefore:  filter.EndsBefore,
	})
	if err != nil {
		return nil, err
	}
	meetings := make([]application.Meeting, 0, len(models))
	for _, model := range models {
		meetings = append(meetings, toApplicationMeeting(model))
	}
	return meetings, nil
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:          model.ID,
		Name:        model.Name,
		Capacity:    model.Capacity,
		Location:    copyStringPtr(model.Location),
		Description: copyStringPtr(model.Description),
		Available:   model.Available,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:          room.ID,
		Name:        room.Name,
		Capacity:    room.Capacity,
		Location:    copyStringPtr(room.Location),
		Description: copyStringPtr(room.Description),
		Available:   room.Available,
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}
}

func toApplicationParticipant(model persistence.Participant) application.Participant {
	return application.Participant{
		ID:         model.ID,
		Name:       model.Name,
		Email:      model.Email,
		Department: copyStringPtr(model.Department),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toPersistenceParticipant(participant application.Participant) persistence.Participant {
	return persistence.Participant{
		ID:         participant.ID,
		Name:       participant.Name,
		Email:      participant.Email,
		Department: copyStringPtr(participant.Department),
		CreatedAt:  participant.CreatedAt,
		UpdatedAt:  participant.UpdatedAt,
	}
}

func toApplicationMeeting(model persistence.Meeting) application.Meeting {
	return application.Meeting{
		ID:             model.ID,
		Title:          model.Title,
		Description:    copyStringPtr(model.Description),
		Start:          model.Start,
		End:            model.End,
		RoomID:         model.RoomID,
		ParticipantIDs: append([]string(nil), model.ParticipantIDs...),
		Status:         application.MeetingStatus(model.Status),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func toPersistenceMeeting(meeting application.Meeting) persistence.Meeting {
	return persistence.Meeting{
		ID:             meeting.ID,
		Title:          meeting.Title,
		Description:    copyStringPtr(meeting.Description),
		Start:          meeting.Start,
		End:            meeting.End,
		RoomID:         meeting.RoomID,
		ParticipantIDs: append([]string(nil), meeting.ParticipantIDs...),
		Status:         persistence.MeetingStatus(meeting.Status),
		CreatedAt:      meeting.CreatedAt,
		UpdatedAt:      meeting.UpdatedAt,
	}
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
