package firestoredb

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/mmynk/syncdays/internal/models"
	"github.com/mmynk/syncdays/internal/storage"
)

// CreateGroup persists a new group document. Firestore assigns the ID
// and the server assigns createdAt.
func (s *FirestoreStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if len(group.Members) == 0 {
		group.Members = []string{group.CreatedBy}
	}

	doc := s.client.Collection(groupsCollection).NewDoc()
	data := map[string]interface{}{
		"name":      group.Name,
		"members":   group.Members,
		"createdBy": group.CreatedBy,
		"createdAt": firestore.ServerTimestamp,
	}
	if len(group.MemberNames) > 0 {
		data["memberNames"] = group.MemberNames
	}

	if _, err := doc.Create(ctx, data); err != nil {
		return mapErr("create group", "group", doc.ID, err)
	}

	group.ID = doc.ID
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}
	return nil
}

// GetGroup retrieves a group by document ID.
func (s *FirestoreStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	snap, err := s.groupDoc(groupID).Get(ctx)
	if err != nil {
		return nil, mapErr("get group", "group", groupID, err)
	}
	return decodeGroup(snap)
}

func decodeGroup(snap *firestore.DocumentSnapshot) (*models.Group, error) {
	group := &models.Group{}
	if err := snap.DataTo(group); err != nil {
		return nil, &storage.UnavailableError{Op: "decode group", Err: err}
	}
	group.ID = snap.Ref.ID
	return group, nil
}

// AddMember appends userID via ArrayUnion, which the server applies
// idempotently: joining twice never duplicates the entry.
func (s *FirestoreStore) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := s.groupDoc(groupID).Update(ctx, []firestore.Update{
		{Path: "members", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		return mapErr("add member", "group", groupID, err)
	}
	return nil
}

// SetMemberName upserts the display-name override under the member's
// own key of the memberNames map.
func (s *FirestoreStore) SetMemberName(ctx context.Context, groupID, userID, name string) error {
	_, err := s.groupDoc(groupID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"memberNames", userID}, Value: name},
	})
	if err != nil {
		return mapErr("set member name", "group", groupID, err)
	}
	return nil
}

// ListGroupsByMember returns every group whose members array contains
// userID.
func (s *FirestoreStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	iter := s.client.Collection(groupsCollection).
		Where("members", "array-contains", userID).
		Documents(ctx)
	defer iter.Stop()

	var groups []*models.Group
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &storage.UnavailableError{Op: "list groups", Err: err}
		}
		group, err := decodeGroup(snap)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// DeleteGroup removes the group document. The day sweep must have
// already run; see Store.DeleteGroup.
func (s *FirestoreStore) DeleteGroup(ctx context.Context, groupID string) error {
	// Firestore deletes are no-ops for missing documents, so check
	// existence to honor the not-found contract.
	if _, err := s.groupDoc(groupID).Get(ctx); err != nil {
		return mapErr("delete group", "group", groupID, err)
	}
	if _, err := s.groupDoc(groupID).Delete(ctx); err != nil {
		return mapErr("delete group", "group", groupID, err)
	}
	return nil
}

// WatchGroups streams the full set of groups containing userID on every
// change, via Firestore query snapshots.
func (s *FirestoreStore) WatchGroups(ctx context.Context, userID string) (*storage.GroupWatch, error) {
	query := s.client.Collection(groupsCollection).
		Where("members", "array-contains", userID)

	w := storage.NewGroupWatch()
	watchCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-w.Done()
		cancel()
	}()

	go func() {
		defer cancel()
		snaps := query.Snapshots(watchCtx)
		defer snaps.Stop()
		for {
			qsnap, err := snaps.Next()
			if err != nil {
				w.Finish(ctxErr(watchCtx, err))
				return
			}
			var groups []*models.Group
			for {
				snap, err := qsnap.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					w.Finish(ctxErr(watchCtx, err))
					return
				}
				group, err := decodeGroup(snap)
				if err != nil {
					w.Finish(err)
					return
				}
				groups = append(groups, group)
			}
			if !w.Send(groups) {
				w.Finish(nil)
				return
			}
		}
	}()

	return w, nil
}
