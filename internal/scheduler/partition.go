package scheduler

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Partition preconditions. These leave the hackathon untouched when hit.
var (
	ErrNoParticipants      = errors.New("no participants to partition")
	ErrNoProblemStatements = errors.New("hackathon has no problem statements")
)

// TeamDraft is one team computed by the partitioner, before persistence.
// MemberIDs[0] is the leader.
type TeamDraft struct {
	Name             string
	ProblemStatement string
	MemberIDs        []uuid.UUID
}

// Partition is the full result of splitting one hackathon's participants.
// Unallocated holds participants that could not be placed because the
// trailing team would have been smaller than the minimum team size.
type Partition struct {
	Teams       []TeamDraft
	Unallocated []uuid.UUID
}

// BuildPartition splits participants into balanced teams.
//
// Team count is ceil(total/maxTeamSize); each team gets floor(total/count)
// members and the first (total mod count) teams get one extra. Participants
// are shuffled with Fisher-Yates before being dealt out in order, so rng is
// the only source of non-determinism. A team whose computed size falls below
// minTeamSize is not formed and its would-be members stay unallocated.
//
// Each formed team is assigned a problem statement uniformly at random, with
// replacement, and a display name with a random suffix. Name uniqueness is
// best-effort here; the teams table unique index is the final authority.
func BuildPartition(participants []uuid.UUID, maxTeamSize, minTeamSize int, statements []string, rng *rand.Rand) (Partition, error) {
	if len(participants) == 0 {
		return Partition{}, ErrNoParticipants
	}
	if len(statements) == 0 {
		return Partition{}, ErrNoProblemStatements
	}
	if maxTeamSize < 1 || minTeamSize < 1 {
		return Partition{}, fmt.Errorf("invalid team size bounds min=%d max=%d", minTeamSize, maxTeamSize)
	}

	total := len(participants)
	teamCount := (total + maxTeamSize - 1) / maxTeamSize
	baseSize := total / teamCount
	remainder := total % teamCount

	shuffled := make([]uuid.UUID, total)
	copy(shuffled, participants)
	for i := total - 1; i >= 1; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	var p Partition
	next := 0
	for teamIdx := 0; teamIdx < teamCount; teamIdx++ {
		size := baseSize
		if teamIdx < remainder {
			size++
		}
		if size < minTeamSize {
			// Too small to form a team; members stay unallocated.
			continue
		}
		if next+size > total {
			break
		}
		members := shuffled[next : next+size]
		next += size
		p.Teams = append(p.Teams, TeamDraft{
			Name:             teamName(rng),
			ProblemStatement: statements[rng.Intn(len(statements))],
			MemberIDs:        append([]uuid.UUID(nil), members...),
		})
	}
	p.Unallocated = append([]uuid.UUID(nil), shuffled[next:]...)
	return p, nil
}

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func teamName(rng *rand.Rand) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = nameAlphabet[rng.Intn(len(nameAlphabet))]
	}
	return "team-" + string(suffix)
}
