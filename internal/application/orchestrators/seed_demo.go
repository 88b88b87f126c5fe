package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"frontdesk/internal/domain/member"
)

// SeedDemoDeps holds dependencies for SeedDemo.
type SeedDemoDeps struct {
	Register RegisterMemberDeps
	Now      func() time.Time // injectable for testing
}

type demoMember struct {
	name, phone, plan string
	fees              int
	startOffset       int // days relative to today
	endOffset         int
}

var demoMembers = []demoMember{
	{"Aroha Ngata", "0211000001", "Monthly", 1000, 0, 30},
	{"Ben Carter", "0211000002", "Quarterly", 2700, -85, 5},
	{"Chen Li", "0211000003", "Monthly", 1000, -60, -30},
}

// ExecuteSeedDemo registers demo members into an empty registry.
// Used in development only; it goes through registration so the ledger and QR codes are consistent.
// PRE: none
// POST: If the registry was empty, it holds one active, one expiring and one expired member
// INVARIANT: Idempotent; a non-empty registry is left untouched
func ExecuteSeedDemo(ctx context.Context, deps SeedDemoDeps) (int, error) {
	existing, err := deps.Register.MemberStore.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	now := nowOrDefault(deps.Now)
	deps.Register.Now = func() time.Time { return now }
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(member.DateLayout) }

	for _, d := range demoMembers {
		_, err := ExecuteRegisterMember(ctx, RegisterMemberInput{
			Name:      d.name,
			Phone:     d.phone,
			Plan:      d.plan,
			Fees:      d.fees,
			StartDate: day(d.startOffset),
			EndDate:   day(d.endOffset),
		}, deps.Register)
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", d.name, err)
		}
	}
	slog.Info("seed_event", "event", "demo_members_seeded", "count", len(demoMembers))
	return len(demoMembers), nil
}
