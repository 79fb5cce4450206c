package meetingsim

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/use-overseer/Orquesta/pkg/logger"
)

// Verification thresholds. Rotation and suppression are statistical: the
// engine explores on purpose, so those checks warn instead of failing.
const (
	minWeeksForRotation = 6
	rotationShareLimit  = 0.6
	suppressionWindow   = 4
)

// verifyResults checks every scheduled week against the structural rules
// and then looks at rotation spread and post-rejection suppression.
func verifyResults(ctx context.Context, roster []Candidate, records []weekRecord, rejections []rejection) error {
	logger.Get().Info(ctx, "verifying simulation results",
		logger.Int("weeks", len(records)),
		logger.Int("rejections", len(rejections)))

	log.Printf("🔍 Verifying %d scheduled weeks...", len(records))

	if err := verifyStructure(roster, records); err != nil {
		return err
	}
	log.Println("✅ Structural rules hold for all weeks")

	verifyRotation(records)
	verifySuppression(records, rejections, rosterNames(roster))

	log.Println("✅ Result verification completed")
	return nil
}

// verifyStructure enforces the rules the engine must never break: no
// double-booking inside a week, no assignment to an excluded person, no
// role staffed by someone without the capability, and gender-matched
// assistants.
func verifyStructure(roster []Candidate, records []weekRecord) error {
	caps := make(map[int64]map[string]bool, len(roster))
	gender := make(map[int64]string, len(roster))
	for _, c := range roster {
		set := make(map[string]bool, len(c.Roles))
		for _, r := range c.Roles {
			set[r] = true
		}
		caps[c.ID] = set
		gender[c.ID] = c.Genero
	}

	for _, rec := range records {
		excluded := make(map[string]bool, len(rec.Excluded))
		for _, name := range rec.Excluded {
			excluded[name] = true
		}

		seen := make(map[int64]string)
		for _, a := range rec.Meeting.Assignments {
			people := []*Person{a.Publicador, a.Ayudante}
			for _, p := range people {
				if p == nil {
					continue
				}
				if prior, ok := seen[p.ID]; ok {
					return fmt.Errorf("week %s: %s assigned to both %q and %q", rec.Week, p.Nombre, prior, a.Tema)
				}
				seen[p.ID] = a.Tema
				if excluded[p.Nombre] {
					return fmt.Errorf("week %s: excluded person %s assigned to %q", rec.Week, p.Nombre, a.Tema)
				}
			}

			if a.Publicador != nil {
				if err := verifyCapability(caps, a.Type, a.Publicador); err != nil {
					return fmt.Errorf("week %s: %w", rec.Week, err)
				}
			}
			if a.Ayudante != nil {
				if a.Publicador == nil {
					return fmt.Errorf("week %s: %q has an assistant but no principal", rec.Week, a.Tema)
				}
				if !caps[a.Ayudante.ID][rolePublicador] {
					return fmt.Errorf("week %s: assistant %s is not a publicador", rec.Week, a.Ayudante.Nombre)
				}
				if gender[a.Ayudante.ID] != gender[a.Publicador.ID] {
					return fmt.Errorf("week %s: assistant %s does not match the gender of %s", rec.Week, a.Ayudante.Nombre, a.Publicador.Nombre)
				}
			}
		}
	}

	return nil
}

// verifyCapability checks that the assigned person can hold the activity
// type. Generic activities are open to everyone and the ministry school
// draws from the publicador pool.
func verifyCapability(caps map[int64]map[string]bool, roleType string, p *Person) error {
	switch roleType {
	case roleGeneric:
		return nil
	case roleSMM:
		if !caps[p.ID][rolePublicador] {
			return fmt.Errorf("%s holds a school part but is not a publicador", p.Nombre)
		}
		return nil
	default:
		if !caps[p.ID][roleType] {
			return fmt.Errorf("%s holds %q without the capability", p.Nombre, roleType)
		}
		return nil
	}
}

// verifyRotation checks how evenly each rotating role was spread. A single
// person holding a role in most weeks means rotation pressure is not
// working; with exploration enabled some clustering is normal, so this
// only warns.
func verifyRotation(records []weekRecord) {
	if len(records) < minWeeksForRotation {
		log.Printf("🔍 Skipping rotation check: only %d weeks scheduled", len(records))
		return
	}

	for _, roleType := range []string{rolePresidente, roleLector, roleOracion} {
		counts := make(map[string]int)
		total := 0
		for _, rec := range records {
			if a := findRole(rec.Meeting, roleType); a != nil && a.Publicador != nil {
				counts[a.Publicador.Nombre]++
				total++
			}
		}
		if total == 0 {
			continue
		}

		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if counts[names[i]] != counts[names[j]] {
				return counts[names[i]] > counts[names[j]]
			}
			return names[i] < names[j]
		})

		topShare := float64(counts[names[0]]) / float64(total)
		if topShare > rotationShareLimit {
			log.Printf("⚠️  Rotation warning: %s held %s in %.0f%% of weeks", names[0], roleType, topShare*PercentageMultiplier)
		} else {
			log.Printf("✅ Rotation check passed for %s: %d people, top share %.0f%%", roleType, len(counts), topShare*PercentageMultiplier)
		}
	}
}

// verifySuppression checks that a rejected lector mostly stays off the
// lectern in the weeks right after the rejection. Exploration may still
// pick the person occasionally, so repeats only warn.
func verifySuppression(records []weekRecord, rejections []rejection, names map[int64]string) {
	if len(rejections) == 0 {
		log.Printf("🔍 Skipping suppression check: no rejections were sent")
		return
	}

	for _, rej := range rejections {
		repeats := 0
		window := 0
		for i := rej.WeekIndex + 1; i < len(records) && i <= rej.WeekIndex+suppressionWindow; i++ {
			window++
			if a := findRole(records[i].Meeting, roleLector); a != nil && a.Publicador != nil && a.Publicador.ID == rej.PersonID {
				repeats++
			}
		}
		if window == 0 {
			continue
		}
		if repeats > window/2 {
			log.Printf("⚠️  Suppression warning: %s kept the lector role %d of %d weeks after rejection in week %s",
				names[rej.PersonID], repeats, window, records[rej.WeekIndex].Week)
		} else {
			log.Printf("✅ Suppression check passed: %s held lector %d of %d weeks after rejection", names[rej.PersonID], repeats, window)
		}
	}
}

// rosterNames maps candidate ids to display names.
func rosterNames(roster []Candidate) map[int64]string {
	names := make(map[int64]string, len(roster))
	for _, c := range roster {
		names[c.ID] = c.Nombre
	}
	return names
}
