package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) reviewStore(ctx context.Context) (models.ReviewStore, error) {
	store, err := r.openStore(ctx)
	if err != nil {
		return nil, err
	}

	rs, ok := models.Reviews(store)
	if !ok {
		return nil, fmt.Errorf("%w: reviews require the sqlite backend (current: %s)", shared.ErrNotSupported, store.Name())
	}
	return rs, nil
}

// ReviewsList prints a movie's reviews.
func (r *Runner) ReviewsList(ctx context.Context, cmd *cli.Command) error {
	rs, err := r.reviewStore(ctx)
	if err != nil {
		return err
	}

	reviews, err := rs.GetReviews(ctx, cmd.Int("user"), cmd.Int("movie"))
	if err != nil {
		return err
	}

	return r.emit(cmd, reviews, func() error {
		return r.writePlainln(r.palette.ReviewsList(reviews))
	})
}

// ReviewsAdd stores the positional text as a review.
func (r *Runner) ReviewsAdd(ctx context.Context, cmd *cli.Command) error {
	text, err := joinArgs(cmd, "review text")
	if err != nil {
		return err
	}

	rs, err := r.reviewStore(ctx)
	if err != nil {
		return err
	}

	review, err := rs.AddReview(ctx, cmd.Int("user"), cmd.Int("movie"), text)
	if err != nil {
		return fmt.Errorf("failed to add review: %w", err)
	}

	return r.emit(cmd, review, func() error {
		return r.writePlainln(r.palette.OK(fmt.Sprintf("Added review #%d", review.ID)))
	})
}

// ReviewsDelete removes one review.
func (r *Runner) ReviewsDelete(ctx context.Context, cmd *cli.Command) error {
	rs, err := r.reviewStore(ctx)
	if err != nil {
		return err
	}

	reviewID := cmd.Int("review")
	if err := rs.DeleteReview(ctx, cmd.Int("user"), cmd.Int("movie"), reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return r.writePlainln(r.palette.OK(fmt.Sprintf("Deleted review #%d", reviewID)))
}
