package pg

import (
	"context"
	"fmt"

	"github.com/agora-forum/agora/shared/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// threadRecord keeps the references of a loaded thread until they are expanded.
type threadRecord struct {
	thread   *domain.Thread
	authorId string
	replyIds pq.StringArray
}

type replyRecord struct {
	reply    *domain.Reply
	authorId string
}

// ResolveThreads looks up ids in coll and returns one entry per id, in the
// same order. Entries whose record does not exist are nil.
func (s *Storage) ResolveThreads(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Thread, error) {
	if len(ids) == 0 {
		return []*domain.Thread{}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := selectThreads(ctx, s.db, coll, `WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	byId := make(map[string]threadRow, len(rows))
	for _, row := range rows {
		byId[row.Id] = row
	}

	resolved := make([]*domain.Thread, len(ids))
	records := make([]threadRecord, 0, len(rows))
	for i, id := range ids {
		row, ok := byId[id]
		if !ok {
			continue
		}
		rec := newThreadRecord(row)
		resolved[i] = rec.thread
		records = append(records, rec)
	}

	if err := s.expandThreads(ctx, coll, records, exp); err != nil {
		return nil, err
	}
	return resolved, nil
}

// ResolveReplies is ResolveThreads for reply collections.
func (s *Storage) ResolveReplies(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Reply, error) {
	if len(ids) == 0 {
		return []*domain.Reply{}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := selectReplies(ctx, s.db, coll, ids)
	if err != nil {
		return nil, err
	}
	byId := make(map[string]replyRow, len(rows))
	for _, row := range rows {
		byId[row.Id] = row
	}

	resolved := make([]*domain.Reply, len(ids))
	records := make([]replyRecord, 0, len(rows))
	for i, id := range ids {
		row, ok := byId[id]
		if !ok {
			continue
		}
		rec := newReplyRecord(row)
		resolved[i] = rec.reply
		records = append(records, rec)
	}

	authors, err := s.loadAuthors(ctx, replyAuthorIds(records), exp.Author)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		rec.reply.Author = authors[rec.authorId]
	}
	return resolved, nil
}

// ThreadsLikedBy returns threads whose like set contains userId, oldest first.
func (s *Storage) ThreadsLikedBy(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error) {
	return s.threadsWhere(ctx, `WHERE $1 = ANY(like_users) ORDER BY created_at, id`, userId, exp)
}

// ThreadsWithRepliesLikedBy returns threads having at least one reply whose
// like set contains userId, oldest first. Threads carry all their replies.
func (s *Storage) ThreadsWithRepliesLikedBy(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error) {
	return s.threadsWhere(ctx, `WHERE EXISTS (
			SELECT 1 FROM replies r
			WHERE r.id = ANY(threads.reply_ids) AND $1 = ANY(r.like_users)
		) ORDER BY created_at, id`, userId, exp)
}

func (s *Storage) threadsWhere(ctx context.Context, where string, arg any, exp domain.Expansion) ([]domain.Thread, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := selectThreads(ctx, s.db, domain.Threads, where, arg)
	if err != nil {
		return nil, err
	}
	records := make([]threadRecord, len(rows))
	for i, row := range rows {
		records[i] = newThreadRecord(row)
	}
	if err := s.expandThreads(ctx, domain.Threads, records, exp); err != nil {
		return nil, err
	}

	threads := make([]domain.Thread, len(records))
	for i, rec := range records {
		threads[i] = *rec.thread
	}
	return threads, nil
}

// expandThreads fills authors and, if requested, replies. Replies that no
// longer exist are skipped.
func (s *Storage) expandThreads(ctx context.Context, coll domain.Collection, records []threadRecord, exp domain.Expansion) error {
	if len(records) == 0 {
		return nil
	}

	authorIds := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.authorId != "" {
			authorIds = append(authorIds, rec.authorId)
		}
	}

	var replies map[string]replyRecord
	if exp.Replies {
		var replyIds pq.StringArray
		for _, rec := range records {
			replyIds = append(replyIds, rec.replyIds...)
		}
		rows, err := selectReplies(ctx, s.db, coll.ReplyCollection(), replyIds)
		if err != nil {
			return err
		}
		replies = make(map[string]replyRecord, len(rows))
		for _, row := range rows {
			rec := newReplyRecord(row)
			replies[row.Id] = rec
			if rec.authorId != "" {
				authorIds = append(authorIds, rec.authorId)
			}
		}
	}

	authors, err := s.loadAuthors(ctx, authorIds, exp.Author)
	if err != nil {
		return err
	}

	for _, rec := range records {
		rec.thread.Author = authors[rec.authorId]
		if !exp.Replies {
			continue
		}
		rec.thread.Replies = make([]domain.Reply, 0, len(rec.replyIds))
		for _, id := range rec.replyIds {
			reply, ok := replies[id]
			if !ok {
				continue
			}
			r := *reply.reply
			r.Author = authors[reply.authorId]
			rec.thread.Replies = append(rec.thread.Replies, r)
		}
	}
	return nil
}

// loadAuthors returns authors keyed by id. Deleted users are absent from the map.
func (s *Storage) loadAuthors(ctx context.Context, ids []string, fields domain.AuthorFields) (map[string]*domain.Author, error) {
	authors := make(map[string]*domain.Author)
	if len(ids) == 0 {
		return authors, nil
	}

	var rows []authorRow
	if err := sqlx.SelectContext(ctx, s.db, &rows,
		`SELECT id, name, image, role FROM users WHERE id = ANY($1)`, pq.StringArray(ids)); err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}

	for _, row := range rows {
		author := &domain.Author{Id: row.Id, Name: row.Name, Image: row.Image}
		if fields == domain.AuthorProfile {
			author.Role = row.Role
		}
		authors[row.Id] = author
	}
	return authors, nil
}

func selectThreads(ctx context.Context, q sqlx.QueryerContext, coll domain.Collection, where string, args ...any) ([]threadRow, error) {
	table, err := tableName(coll)
	if err != nil {
		return nil, err
	}
	var rows []threadRow
	query := fmt.Sprintf(`SELECT %s FROM %s AS threads %s`, threadColumns, table, where)
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", coll, err)
	}
	return rows, nil
}

func selectReplies(ctx context.Context, q sqlx.QueryerContext, coll domain.Collection, ids pq.StringArray) ([]replyRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	table, err := tableName(coll)
	if err != nil {
		return nil, err
	}
	var rows []replyRow
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1)`, replyColumns, table)
	if err := sqlx.SelectContext(ctx, q, &rows, query, ids); err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", coll, err)
	}
	return rows, nil
}

func newThreadRecord(row threadRow) threadRecord {
	return threadRecord{thread: row.toDomain(), authorId: row.AuthorId.String, replyIds: row.ReplyIds}
}

func newReplyRecord(row replyRow) replyRecord {
	return replyRecord{reply: row.toDomain(), authorId: row.AuthorId.String}
}

func replyAuthorIds(records []replyRecord) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.authorId != "" {
			ids = append(ids, rec.authorId)
		}
	}
	return ids
}
