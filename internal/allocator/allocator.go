// Package allocator turns a target budget into a concrete, priced PC
// build: a tier table splits the budget into per-slot sub-budgets, the
// catalog is queried for parts within a tolerance band of each
// sub-budget, and one candidate per slot is chosen uniformly at random.
package allocator

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"rigforge/internal/catalog"
	apperrors "rigforge/internal/errors"
	"rigforge/internal/models"
	"rigforge/internal/uuid"
)

// ratioEpsilon bounds float drift when checking that a tier's ratios
// sum to 1.
const ratioEpsilon = 1e-9

// Tier maps a contiguous budget range to a per-slot ratio table.
// A tier covers (previous bound, UpperBound]; the bound itself belongs
// to the tier.
type Tier struct {
	UpperBound float64
	Ratios     map[models.Slot]float64
}

// DefaultTiers is the standard tier table. Each ratio set sums to
// exactly 1.0: the sub-budgets are a targeting heuristic, not a
// guarantee on the assembled total.
func DefaultTiers() []Tier {
	return []Tier{
		{
			UpperBound: 800,
			Ratios: map[models.Slot]float64{
				models.SlotCPU:         0.15,
				models.SlotGPU:         0.30,
				models.SlotRAM:         0.20,
				models.SlotStorage:     0.15,
				models.SlotMotherboard: 0.10,
				models.SlotPowerSupply: 0.05,
				models.SlotCase:        0.05,
			},
		},
		{
			UpperBound: 1500,
			Ratios: map[models.Slot]float64{
				models.SlotCPU:         0.20,
				models.SlotGPU:         0.30,
				models.SlotRAM:         0.12,
				models.SlotStorage:     0.13,
				models.SlotMotherboard: 0.12,
				models.SlotPowerSupply: 0.07,
				models.SlotCase:        0.06,
			},
		},
		{
			UpperBound: 2500,
			Ratios: map[models.Slot]float64{
				models.SlotCPU:         0.22,
				models.SlotGPU:         0.33,
				models.SlotRAM:         0.10,
				models.SlotStorage:     0.12,
				models.SlotMotherboard: 0.11,
				models.SlotPowerSupply: 0.07,
				models.SlotCase:        0.05,
			},
		},
	}
}

// Allocator generates builds from catalog snapshots.
type Allocator struct {
	tiers        []Tier
	tolerancePct float64
	ceiling      float64

	mu  sync.Mutex
	rng *rand.Rand
}

// New validates the tier table and constructs an Allocator. The rng is
// injected so tests can seed it; rand.New(rand.NewSource(...)) is not
// safe for concurrent use, so sampling is serialized internally.
// The effective ceiling is min(ceiling, top tier bound) — the tier
// table is the real authority and the config knob can only lower it.
func New(tiers []Tier, tolerancePct, ceiling float64, rng *rand.Rand) (*Allocator, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("allocator: empty tier table")
	}
	if tolerancePct <= 0 || tolerancePct >= 100 {
		return nil, fmt.Errorf("allocator: tolerance must be in (0, 100), got %v", tolerancePct)
	}

	prevBound := 0.0
	for i, tier := range tiers {
		if tier.UpperBound <= prevBound {
			return nil, fmt.Errorf("allocator: tier %d bound %v not above previous bound %v", i, tier.UpperBound, prevBound)
		}
		prevBound = tier.UpperBound

		var sum float64
		for _, slot := range models.Slots() {
			ratio, ok := tier.Ratios[slot]
			if !ok {
				return nil, fmt.Errorf("allocator: tier %d missing ratio for slot %s", i, slot)
			}
			if ratio <= 0 {
				return nil, fmt.Errorf("allocator: tier %d has non-positive ratio for slot %s", i, slot)
			}
			sum += ratio
		}
		if math.Abs(sum-1) > ratioEpsilon {
			return nil, fmt.Errorf("allocator: tier %d ratios sum to %v, want 1.0", i, sum)
		}
	}

	top := tiers[len(tiers)-1].UpperBound
	if ceiling <= 0 || ceiling > top {
		ceiling = top
	}

	return &Allocator{
		tiers:        tiers,
		tolerancePct: tolerancePct,
		ceiling:      ceiling,
		rng:          rng,
	}, nil
}

// Ceiling returns the maximum accepted budget.
func (a *Allocator) Ceiling() float64 { return a.ceiling }

// tierFor scans the ordered tier table and returns the first tier
// whose range contains the budget.
func (a *Allocator) tierFor(budget float64) (*Tier, error) {
	for i := range a.tiers {
		if budget <= a.tiers[i].UpperBound {
			return &a.tiers[i], nil
		}
	}
	return nil, apperrors.WithMessage(apperrors.ErrBudgetOutOfRange,
		fmt.Sprintf("Budget %.2f exceeds the highest supported tier (%.2f)", budget, a.tiers[len(a.tiers)-1].UpperBound))
}

// SubBudgets splits the budget across the seven slots using the
// matching tier's ratio table.
func (a *Allocator) SubBudgets(budget float64) (map[models.Slot]float64, error) {
	if budget <= 0 || budget > a.ceiling {
		return nil, apperrors.WithMessage(apperrors.ErrBudgetOutOfRange,
			fmt.Sprintf("Budget must be between 0 and %.2f", a.ceiling))
	}

	tier, err := a.tierFor(budget)
	if err != nil {
		return nil, err
	}

	subBudgets := make(map[models.Slot]float64, len(tier.Ratios))
	for slot, ratio := range tier.Ratios {
		subBudgets[slot] = budget * ratio
	}
	return subBudgets, nil
}

// candidates returns the pool of catalog parts for a slot within the
// tolerance band around its sub-budget. The Storage slot unions the
// SSD and HDD catalog types against the same sub-budget.
func (a *Allocator) candidates(snap *catalog.Snapshot, slot models.Slot, subBudget float64) []models.Part {
	if slot == models.SlotStorage {
		pool := snap.PartsInBand(models.CategorySSD, subBudget, a.tolerancePct)
		return append(pool, snap.PartsInBand(models.CategoryHDD, subBudget, a.tolerancePct)...)
	}
	return snap.PartsInBand(models.Category(slot), subBudget, a.tolerancePct)
}

// selectPart picks one entry uniformly at random. The pool must be
// non-empty; callers check every pool before sampling.
func selectPart(pool []models.Part, rng *rand.Rand) models.Part {
	return pool[rng.Intn(len(pool))]
}

// Generate assembles a complete build for the given budget from the
// snapshot. It fails without a partial result if the budget is outside
// the tier range or any slot has no candidate within its band.
func (a *Allocator) Generate(snap *catalog.Snapshot, budget float64) (*models.Build, error) {
	subBudgets, err := a.SubBudgets(budget)
	if err != nil {
		return nil, err
	}

	// Gather and check every pool before sampling any of them: a build
	// with an unfillable slot must fail whole.
	pools := make(map[models.Slot][]models.Part, len(subBudgets))
	for _, slot := range models.Slots() {
		pool := a.candidates(snap, slot, subBudgets[slot])
		if len(pool) == 0 {
			return nil, apperrors.WithMessage(apperrors.ErrNoValidPart,
				fmt.Sprintf("No %s found within %.0f%% of %.2f", slot, a.tolerancePct, subBudgets[slot]))
		}
		pools[slot] = pool
	}

	// Sample in fixed slot order so a seeded rng reproduces the same
	// build.
	components := make(models.ComponentMap, len(pools))
	a.mu.Lock()
	for _, slot := range models.Slots() {
		part := selectPart(pools[slot], a.rng)
		components[slot] = models.Component{Name: part.Name, Price: part.Price}
	}
	a.mu.Unlock()

	build := &models.Build{BuildID: uuid.New()}
	build.SetComponents(components)
	return build, nil
}
