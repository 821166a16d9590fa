package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Kolahan61/OAMA-sub000/app/models"
)

// ListClassSessions returns class sessions matching the filter. Empty filter
// fields match everything.
func (s *Store) ListClassSessions(ctx context.Context, filter models.ClassFilter) ([]models.ClassSession, error) {
	q := s.fs.Collection(colClassSessions).Query
	if filter.Day != "" {
		q = q.Where("dayOfWeek", "==", filter.Day)
	}
	if filter.ProgramID != "" {
		q = q.Where("programId", "==", filter.ProgramID)
	}
	if filter.Category != "" {
		q = q.Where("category", "==", filter.Category)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.ClassSession
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var cs models.ClassSession
		if err := doc.DataTo(&cs); err != nil {
			return nil, err
		}
		cs.ID = doc.Ref.ID
		out = append(out, cs)
	}
	return out, nil
}

func (s *Store) GetClassSession(ctx context.Context, id string) (*models.ClassSession, error) {
	doc, err := s.fs.Collection(colClassSessions).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var cs models.ClassSession
	if err := doc.DataTo(&cs); err != nil {
		return nil, err
	}
	cs.ID = doc.Ref.ID
	return &cs, nil
}

// ListPrograms returns catalog programs. Public listings pass activeOnly=true.
func (s *Store) ListPrograms(ctx context.Context, activeOnly bool, category string) ([]models.Program, error) {
	q := s.fs.Collection(colPrograms).Query
	if activeOnly {
		q = q.Where("active", "==", true)
	}
	if category != "" {
		q = q.Where("category", "==", category)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.Program
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var p models.Program
		if err := doc.DataTo(&p); err != nil {
			return nil, err
		}
		p.ID = doc.Ref.ID
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) GetProgram(ctx context.Context, id string) (*models.Program, error) {
	doc, err := s.fs.Collection(colPrograms).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var p models.Program
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	p.ID = doc.Ref.ID
	return &p, nil
}

func (s *Store) ListMembershipPlans(ctx context.Context) ([]models.MembershipPlan, error) {
	iter := s.fs.Collection(colMemberships).Where("active", "==", true).Documents(ctx)
	defer iter.Stop()

	var out []models.MembershipPlan
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var mp models.MembershipPlan
		if err := doc.DataTo(&mp); err != nil {
			return nil, err
		}
		mp.ID = doc.Ref.ID
		out = append(out, mp)
	}
	return out, nil
}

func (s *Store) GetMembershipPlan(ctx context.Context, id string) (*models.MembershipPlan, error) {
	doc, err := s.fs.Collection(colMemberships).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var mp models.MembershipPlan
	if err := doc.DataTo(&mp); err != nil {
		return nil, err
	}
	mp.ID = doc.Ref.ID
	return &mp, nil
}

func planFromSnapshot(doc *firestore.DocumentSnapshot) (*models.MembershipPlan, error) {
	var mp models.MembershipPlan
	if err := doc.DataTo(&mp); err != nil {
		return nil, err
	}
	mp.ID = doc.Ref.ID
	return &mp, nil
}
