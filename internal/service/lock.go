package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"skyvision-booking/pkg/response"
	"skyvision-booking/pkg/sl"
)

// lockRoom takes the room lock, retrying until LockWait runs out. The returned
// func releases it.
func (s *Service) lockRoom(ctx context.Context, roomID string) (func(), error) {
	const op = "service.lockRoom"

	key := "room:" + roomID
	deadline := time.Now().Add(s.opts.LockWait)

	for {
		token, ok, err := s.locker.Lock(ctx, key, s.opts.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if ok {
			return func() {
				if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
					s.log.Error("failed to release room lock", slog.String("room_id", roomID), sl.Err(err))
				}
			}, nil
		}

		if !time.Now().Add(s.opts.LockRetry).Before(deadline) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(s.opts.LockRetry):
		}
	}
}
