package meetingsim

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/use-overseer/Orquesta/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Roster generation constants. Every roster member is a publicador; the
// speaking capabilities below are spread over the men by index so that each
// role always has several eligible candidates.
const (
	lectorEvery     = 2
	presidenteEvery = 3
	oracionOffset   = 1
	absenceChance   = 0.2
)

// Name pools for the synthetic congregation.
var (
	givenM   = []string{"Andres", "Carlos", "Diego", "Felipe", "Hector", "Javier", "Luis", "Mateo", "Pablo", "Ramon"}
	givenF   = []string{"Berta", "Carmen", "Elena", "Irene", "Lucia", "Marta", "Nuria", "Paula", "Rosa", "Sofia"}
	surnames = []string{"Garcia", "Lopez", "Martinez", "Torres", "Vega", "Molina", "Navarro", "Ortega", "Rios", "Serrano"}
)

// smmTemas rotate week over week so the history stays readable.
var smmTemas = [][2]string{
	{"Primera conversacion", "Revisita"},
	{"Revisita", "Curso biblico"},
	{"Primera conversacion", "Curso biblico"},
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateRoster creates a synthetic congregation. Genders alternate and
// capabilities are dealt to the men by index, so any roster of a dozen or
// more people keeps every role staffable even with one absence.
func generateRoster(ctx context.Context, size int) []Candidate {
	logger.Get().Info(ctx, "generating synthetic roster", logger.Int("size", size))

	roster := make([]Candidate, 0, size)
	men := 0
	for i := 0; i < size; i++ {
		id := int64(i + 1)
		surname := surnames[i%len(surnames)]

		if i%2 == 0 {
			given := givenM[(i/2)%len(givenM)]
			roles := []string{rolePublicador}
			if men%lectorEvery == 0 {
				roles = append(roles, roleLector)
			}
			if men%presidenteEvery == 0 {
				roles = append(roles, rolePresidente)
			}
			if men%presidenteEvery == oracionOffset {
				roles = append(roles, roleOracion)
			}
			men++
			roster = append(roster, Candidate{ID: id, Nombre: given + " " + surname, Genero: "M", Roles: roles})
			continue
		}

		given := givenF[(i/2)%len(givenF)]
		roster = append(roster, Candidate{ID: id, Nombre: given + " " + surname, Genero: "F", Roles: []string{rolePublicador}})
	}
	return roster
}

// weeklyPlan returns the activity slate for one meeting. The slate keeps
// the same shape every week; only the SMM temas rotate.
func weeklyPlan(week int) []Activity {
	smm := smmTemas[week%len(smmTemas)]
	return []Activity{
		{Tema: "Palabras de apertura", Type: rolePresidente},
		{Tema: "Lectura de la Biblia", Type: roleLector},
		{Tema: smm[0], Type: roleSMM, RequiresAssistant: true},
		{Tema: smm[1], Type: roleSMM, RequiresAssistant: true},
		{Tema: "Busquemos perlas escondidas", Type: roleGeneric},
		{Tema: "Oracion final", Type: roleOracion},
	}
}

// randomAbsence picks at most one roster member to sit a week out. The
// returned slice is empty most weeks.
func randomAbsence(roster []Candidate) []string {
	if len(roster) == 0 || getRandomFloat() >= absenceChance {
		return nil
	}
	idx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(roster))))
	return []string{roster[idx.Int64()].Nombre}
}

// weekDates materializes consecutive ISO week dates starting from start.
func weekDates(start string, weeks int) ([]string, error) {
	base, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	dates := make([]string, weeks)
	for i := 0; i < weeks; i++ {
		dates[i] = base.AddDate(0, 0, 7*i).Format("2006-01-02")
	}
	return dates, nil
}

// nextMonday returns the ISO date of the upcoming Monday.
func nextMonday(now time.Time) string {
	day := now
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, 1)
	}
	return day.Format("2006-01-02")
}
