package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/apperr"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/economy/mocks"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/engine"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/logging"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/session"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/storage"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testAvatar(id, owner string, forca int) game.AvatarSnapshot {
	return game.AvatarSnapshot{
		ID: id, OwnerUserID: owner, Name: id, Elemento: game.ElementTerra, Raridade: game.RarityComum,
		Nivel: 1, Alive: true,
		Stats: game.Stats{Forca: forca, Agilidade: 10, Resistencia: 5, Foco: 5},
		Abilities: []game.Ability{
			{ID: "rock", Name: "Rock", Kind: game.AbilityOffensive, PrimaryStat: game.StatForca, Power: 5, Cost: 30, Cooldown: 2},
		},
	}
}

type fixture struct {
	svc    *BattleService
	store  *fakeStore
	ledger *mocks.MockLedger
	clock  *clock
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	logging.SetLogger(zap.NewNop())
	ctrl := gomock.NewController(t)
	f := &fixture{
		store:  newFakeStore(),
		ledger: mocks.NewMockLedger(ctrl),
		clock:  &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
	}
	n := 0
	opts.Now = f.clock.Now
	opts.NewID = func() string {
		n++
		return fmt.Sprintf("%s-%d", t.Name(), n)
	}
	if opts.Dice == nil {
		opts.Dice = engine.NewSequenceDice(0)
	}
	if opts.Stake == 0 {
		opts.Stake = 100
	}
	avatars := fakeAvatars{
		"a1":   testAvatar("a1", "u1", 20),
		"a2":   testAvatar("a2", "u2", 20),
		"big":  testAvatar("big", "u3", 200),
		"dead": func() game.AvatarSnapshot { a := testAvatar("dead", "u1", 20); a.Alive = false; return a }(),
	}
	svc, err := NewBattleService(f.store, avatars, f.ledger, opts)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

// startBattle matches u1 and u2 and readies both sides.
func (f *fixture) startBattle(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	if st, err := f.svc.JoinQueue(ctx, "u1", "a1"); err != nil || !st.Queued {
		t.Fatalf("join u1: %+v %v", st, err)
	}
	st, err := f.svc.JoinQueue(ctx, "u2", "a2")
	if err != nil || !st.Matched {
		t.Fatalf("join u2: %+v %v", st, err)
	}
	for _, u := range []string{"u1", "u2"} {
		if _, err := f.svc.MarkReady(ctx, st.MatchID, u); err != nil {
			t.Fatalf("ready %s: %v", u, err)
		}
	}
	return st.MatchID
}

func TestNewBattleServiceRequiresDeps(t *testing.T) {
	if _, err := NewBattleService(nil, fakeAvatars{}, nil, Options{}); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}

func TestJoinQueueValidatesAvatar(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	if _, err := f.svc.JoinQueue(ctx, "u2", "a1"); !errors.Is(err, ErrAvatarNotOwned) {
		t.Fatalf("expected not owned, got %v", err)
	}
	if _, err := f.svc.JoinQueue(ctx, "u1", "dead"); !errors.Is(err, ErrAvatarDead) {
		t.Fatalf("expected dead avatar, got %v", err)
	}
	if _, err := f.svc.JoinQueue(ctx, "u1", ""); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQueueMatchesOnlyWithinTolerance(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	f.svc.JoinQueue(ctx, "u3", "big")
	st, err := f.svc.JoinQueue(ctx, "u1", "a1")
	if err != nil || st.Matched {
		t.Fatalf("far apart powers must not match: %+v %v", st, err)
	}
	if _, err := f.svc.JoinQueue(ctx, "u1", "a1"); apperr.CodeOf(err) != apperr.CodeConflict {
		t.Fatalf("double join must conflict, got %v", err)
	}
	st, err = f.svc.JoinQueue(ctx, "u2", "a2")
	if err != nil || !st.Matched {
		t.Fatalf("expected u2 to match u1: %+v %v", st, err)
	}
	p1, _ := f.svc.PollQueue(ctx, "u1")
	if !p1.Matched || p1.MatchID != st.MatchID {
		t.Fatalf("u1 poll should see the match, got %+v", p1)
	}
	p3, _ := f.svc.PollQueue(ctx, "u3")
	if !p3.Queued || p3.Matched {
		t.Fatalf("u3 keeps waiting, got %+v", p3)
	}
	if err := f.svc.LeaveQueue(ctx, "u3"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := f.svc.LeaveQueue(ctx, "u3"); err != nil {
		t.Fatalf("second leave is a no-op: %v", err)
	}
	if p3, _ := f.svc.PollQueue(ctx, "u3"); p3.Queued || p3.Matched {
		t.Fatalf("u3 left, got %+v", p3)
	}
}

func TestBattleToKnockoutDeliversOutcomesOnce(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	var got []game.Outcome
	f.ledger.EXPECT().ApplyOutcome(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, o game.Outcome) error {
		got = append(got, o)
		return nil
	}).Times(2)

	id := f.startBattle(t)
	view, err := f.svc.GetStatus(ctx, id, "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.Status != game.StatusActive || !view.YourTurn {
		t.Fatalf("u1 should move first: %+v", view)
	}

	// dice always rolls 0: every attack hits critically for 36
	players := []string{"u1", "u2"}
	for i := 0; view.Status == game.StatusActive; i++ {
		user := players[i%2]
		view, err = f.svc.SubmitAction(ctx, id, user, ActionRequest{TurnNumber: view.TurnNumber, Kind: game.ActionAttack})
		if err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
		if i > 10 {
			t.Fatalf("battle should have ended")
		}
	}
	if view.Status != game.StatusFinished || view.EndReason != game.EndReasonKnockout {
		t.Fatalf("expected knockout, got %s/%s", view.Status, view.EndReason)
	}
	final, _ := f.svc.GetStatus(ctx, id, "u1")
	if final.Victory == nil || !*final.Victory || final.Outcome == nil || final.Outcome.FameDelta != 100 {
		t.Fatalf("u1 should win 100 fame: %+v", final.Outcome)
	}
	loser, _ := f.svc.GetStatus(ctx, id, "u2")
	if loser.Outcome == nil || !loser.Outcome.AvatarDied {
		t.Fatalf("u2 avatar should die")
	}
	if len(got) != 2 {
		t.Fatalf("expected two outcomes, got %d", len(got))
	}
}

func TestSubmitRejectsStaleAndForeignTurns(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	id := f.startBattle(t)
	if _, err := f.svc.SubmitAction(ctx, id, "u2", ActionRequest{TurnNumber: 1, Kind: game.ActionAttack}); !errors.Is(err, session.ErrNotYourTurn) {
		t.Fatalf("expected not your turn, got %v", err)
	}
	if _, err := f.svc.SubmitAction(ctx, id, "u1", ActionRequest{TurnNumber: 1, Kind: game.ActionDefend}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.svc.SubmitAction(ctx, id, "u2", ActionRequest{TurnNumber: 1, Kind: game.ActionAttack}); !errors.Is(err, session.ErrStaleTurn) {
		t.Fatalf("expected stale turn, got %v", err)
	}
	if _, err := f.svc.GetStatus(ctx, id, "intruder"); !errors.Is(err, session.ErrNotParticipant) {
		t.Fatalf("expected not participant, got %v", err)
	}
	if _, err := f.svc.GetStatus(ctx, "nope", "u1"); apperr.CodeOf(err) != apperr.CodeSessionNotFound {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestTimeoutSkipsOnRead(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	id := f.startBattle(t)
	f.clock.Advance(31 * time.Second)
	view, err := f.svc.GetStatus(ctx, id, "u2")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.TurnNumber != 2 || !view.YourTurn || view.LastAction == nil || view.LastAction.Kind != game.ActionSkip {
		t.Fatalf("expected skip to u2, got %+v", view)
	}
}

func TestSurrenderDeliveryIsRetried(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	first := f.ledger.EXPECT().ApplyOutcome(gomock.Any(), gomock.Any()).Return(errors.New("economy down"))
	f.ledger.EXPECT().ApplyOutcome(gomock.Any(), gomock.Any()).Return(nil).Times(2).After(first)

	id := f.startBattle(t)
	view, err := f.svc.SubmitAction(ctx, id, "u1", ActionRequest{TurnNumber: 1, Kind: game.ActionSurrender})
	if err != nil {
		t.Fatalf("surrender: %v", err)
	}
	if view.Outcome == nil || view.Outcome.FameDelta != -50 {
		t.Fatalf("expected -50 fame for surrender, got %+v", view.Outcome)
	}
	b, _ := f.store.GetBattle(ctx, id)
	if b.OutcomeDelivered {
		t.Fatalf("failed delivery must not be marked")
	}
	f.svc.GetStatus(ctx, id, "u2")
	f.svc.GetStatus(ctx, id, "u2")
	b, _ = f.store.GetBattle(ctx, id)
	if !b.OutcomeDelivered {
		t.Fatalf("delivery should succeed on retry")
	}
}

func TestRevisionConflictIsRetried(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	id := f.startBattle(t)
	f.store.conflicts = 2
	view, err := f.svc.SubmitAction(ctx, id, "u1", ActionRequest{TurnNumber: 1, Kind: game.ActionDefend})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if view.TurnNumber != 2 {
		t.Fatalf("turn should advance once, got %d", view.TurnNumber)
	}
	f.store.conflicts = maxAttempts
	_, err = f.svc.SubmitAction(ctx, id, "u2", ActionRequest{TurnNumber: 2, Kind: game.ActionDefend})
	if !errors.Is(err, ErrBattleBusy) {
		t.Fatalf("expected busy, got %v", err)
	}
}

func TestReadyTimeoutCancels(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	f.svc.JoinQueue(ctx, "u1", "a1")
	st, _ := f.svc.JoinQueue(ctx, "u2", "a2")
	f.clock.Advance(session.DefaultRules().ReadyGrace + time.Second)
	view, err := f.svc.GetStatus(ctx, st.MatchID, "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.Status != game.StatusCancelled || view.Outcome != nil {
		t.Fatalf("expected cancelled without outcome, got %+v", view)
	}
	if _, err := f.svc.MarkReady(ctx, st.MatchID, "u1"); apperr.CodeOf(err) != apperr.CodeConflict {
		t.Fatalf("ready on cancelled battle must conflict, got %v", err)
	}
	if st, err := f.svc.JoinQueue(ctx, "u1", "a1"); err != nil || !st.Queued {
		t.Fatalf("player may queue again after cancellation: %+v %v", st, err)
	}
}

func TestRejoinAfterExpiredBattle(t *testing.T) {
	t.Run("never readied", func(t *testing.T) {
		f := newFixture(t, Options{})
		ctx := context.Background()
		f.svc.JoinQueue(ctx, "u1", "a1")
		st, err := f.svc.JoinQueue(ctx, "u2", "a2")
		if err != nil || !st.Matched {
			t.Fatalf("join u2: %+v %v", st, err)
		}
		f.clock.Advance(session.DefaultRules().ReadyGrace + time.Hour)
		again, err := f.svc.JoinQueue(ctx, "u1", "a1")
		if err != nil || !again.Queued {
			t.Fatalf("expired battle must not block the queue: %+v %v", again, err)
		}
		b, _ := f.store.GetBattle(ctx, st.MatchID)
		if b.Status != game.StatusCancelled {
			t.Fatalf("expected old battle cancelled, got %s", b.Status)
		}
	})
	t.Run("opponent disconnected", func(t *testing.T) {
		f := newFixture(t, Options{})
		ctx := context.Background()
		id := f.startBattle(t)
		f.clock.Advance(session.DefaultRules().DisconnectGrace + time.Second)
		again, err := f.svc.JoinQueue(ctx, "u2", "a2")
		if err != nil || !again.Queued {
			t.Fatalf("abandoned battle must not block the queue: %+v %v", again, err)
		}
		if b, _ := f.store.GetBattle(ctx, id); b.Status != game.StatusCancelled {
			t.Fatalf("expected cancelled, got %s", b.Status)
		}
	})
	t.Run("still live", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.startBattle(t)
		_, err := f.svc.JoinQueue(context.Background(), "u1", "a1")
		if !errors.Is(err, storage.ErrAlreadyInBattle) {
			t.Fatalf("expected already in battle, got %v", err)
		}
	})
}

func TestSettleIgnoresCallerCancellation(t *testing.T) {
	f := newFixture(t, Options{})
	id := f.startBattle(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b, err := f.svc.Settle(ctx, id)
	if err != nil {
		t.Fatalf("settle with a cancelled caller: %v", err)
	}
	if b.Status != game.StatusActive {
		t.Fatalf("unexpected status %s", b.Status)
	}
}

func TestAIFallbackPlaysOpponentTurns(t *testing.T) {
	f := newFixture(t, Options{AIFallbackAfter: 10 * time.Second})
	ctx := context.Background()
	f.ledger.EXPECT().ApplyOutcome(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc.JoinQueue(ctx, "u1", "a1")
	f.clock.Advance(5 * time.Second)
	if st, _ := f.svc.PollQueue(ctx, "u1"); st.Matched {
		t.Fatalf("fallback too early")
	}
	f.clock.Advance(6 * time.Second)
	st, err := f.svc.PollQueue(ctx, "u1")
	if err != nil || !st.Matched {
		t.Fatalf("expected ai match: %+v %v", st, err)
	}
	view, err := f.svc.MarkReady(ctx, st.MatchID, "u1")
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	if view.Status != game.StatusActive || !view.Opponent.IsAI || view.Personality == "" {
		t.Fatalf("expected active ai battle: %+v", view)
	}
	if !view.YourTurn {
		f.clock.Advance(5 * time.Second)
		if view, err = f.svc.GetStatus(ctx, st.MatchID, "u1"); err != nil {
			t.Fatalf("status: %v", err)
		}
	}
	if !view.YourTurn && view.Status == game.StatusActive {
		t.Fatalf("ai should have acted after its delay")
	}
	if view.Status == game.StatusActive {
		turn := view.TurnNumber
		view, err = f.svc.SubmitAction(ctx, st.MatchID, "u1", ActionRequest{TurnNumber: turn, Kind: game.ActionAttack})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		f.clock.Advance(5 * time.Second)
		view, _ = f.svc.GetStatus(ctx, st.MatchID, "u1")
		if view.Status == game.StatusActive && view.TurnNumber != turn+2 {
			t.Fatalf("ai should answer, turn %d -> %d", turn, view.TurnNumber)
		}
	}
}

func TestPurgeStaleQueue(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	f.svc.JoinQueue(ctx, "u3", "big")
	f.clock.Advance(time.Minute)
	n, err := f.svc.PurgeStaleQueue(ctx, 30*time.Second)
	if err != nil || n != 1 {
		t.Fatalf("expected one purge, got %d %v", n, err)
	}
}
