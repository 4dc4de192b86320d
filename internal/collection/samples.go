package collection

import (
	"fmt"
	"path/filepath"
	"strings"

	"pdf-analyzer/internal/helper"
	"pdf-analyzer/internal/models"
	"pdf-analyzer/internal/parser"
	"pdf-analyzer/internal/pdfgen"
)

type sampleDoc struct {
	filename string
	title    string
	pages    []string
}

type sample struct {
	dir     string
	id      string
	name    string
	persona string
	task    string
	docs    []sampleDoc
}

var samples = []sample{
	{
		dir:     "Collection 1",
		id:      "round_1b_002",
		name:    "travel_planner",
		persona: "Travel Planner",
		task:    "Plan a trip of 4 days for a group of 10 college friends.",
		docs: []sampleDoc{
			{filename: "South of France - Cities.pdf", title: "South of France - Cities", pages: []string{
				"COMPREHENSIVE GUIDE TO CITIES\nThe south of France is home to historic cities, each with its own culture.\nMarseille\nThe oldest city in France, a port with a lively harbour and a famous fish market.\nVisit the old port, explore the Panier district and take a tour of the basilica.",
				"Nice\nA coastal city on the Riviera with a long promenade along the beach.\nThe old town has narrow streets, markets and a restaurant on every corner.",
			}},
			{filename: "South of France - Things to Do.pdf", title: "South of France - Things to Do", pages: []string{
				"COASTAL ADVENTURES\nThe coast offers beach hopping, sailing and water sports for every group.\nRent a boat to explore hidden coves and enjoy an adventure on the water.",
				"NIGHTLIFE AND ENTERTAINMENT\nBars and clubs in Nice and Marseille keep the nightlife going until dawn.\nLive music venues and beach parties are popular with groups of friends.",
			}},
		},
	},
	{
		dir:     "Collection 2",
		id:      "round_1b_003",
		name:    "create_manageable_forms",
		persona: "HR professional",
		task:    "Create and manage fillable forms for onboarding and compliance.",
		docs: []sampleDoc{
			{filename: "Learn Acrobat - Fill and Sign.pdf", title: "Learn Acrobat - Fill and Sign", pages: []string{
				"1. Fill and sign PDF forms\nOpen the PDF form in Acrobat and select Fill and Sign from the tools pane.\nClick a text field to type, then add your signature to the document.",
				"Change Flat Forms To Fillable\nUse the Prepare Form tool to detect form fields automatically.\nAcrobat creates fillable fields that employees can complete during onboarding.",
			}},
			{filename: "Learn Acrobat - Request e-signatures.pdf", title: "Learn Acrobat - Request e-signatures", pages: []string{
				"Send a document to get signatures from others:\nChoose the request signatures tool and add recipient email addresses.\nTrack the workflow status and send reminders for compliance deadlines.",
			}},
		},
	},
	{
		dir:     "Collection 3",
		id:      "round_1b_001",
		name:    "dinner_menu_planning",
		persona: "Food Contractor",
		task:    "Prepare a vegetarian buffet-style dinner menu for a corporate gathering, including gluten-free items.",
		docs: []sampleDoc{
			{filename: "Dinner Ideas - Mains.pdf", title: "Dinner Ideas - Mains", pages: []string{
				"FALAFEL\nIngredients: chickpeas, onion, garlic, parsley, cumin.\nPreparation: soak the chickpeas overnight, blend with herbs and fry until golden.\nA vegetarian and gluten-free option for any buffet menu.",
				"RATATOUILLE\nIngredients: eggplant, zucchini, bell peppers, tomatoes.\nPreparation: slice the vegetables, layer them and bake for forty minutes before serving.",
			}},
			{filename: "Dinner Ideas - Sides.pdf", title: "Dinner Ideas - Sides", pages: []string{
				"Quinoa Salad\nIngredients: quinoa, cucumber, tomato, lemon juice, olive oil.\nA gluten-free side that keeps well on a buffet table for a corporate dinner.",
			}},
		},
	},
}

// WriteSamples creates the bundled sample collections under basePath,
// rendering their PDFs with gofpdf. Existing collections are left alone. It
// returns the paths of the collections it created.
func (l Layout) WriteSamples(basePath string) ([]string, error) {
	header := parser.NewSectionParser(parser.DefaultHeaderPatterns())
	opts := pdfgen.Options{IsHeading: func(line string) bool {
		_, ok := header.MatchHeader(line)
		return ok
	}}

	var created []string
	for _, s := range samples {
		path := filepath.Join(basePath, s.dir)
		if isDir(path) {
			continue
		}
		input := &models.ChallengeInput{
			ChallengeInfo: models.ChallengeInfo{
				ChallengeID:  s.id,
				TestCaseName: s.name,
				Description:  strings.ReplaceAll(s.name, "_", " "),
			},
			Documents:   []models.InputDocument{},
			Persona:     models.Persona{Role: s.persona},
			JobToBeDone: models.JobToBeDone{Task: s.task},
		}
		for _, d := range s.docs {
			out := filepath.Join(l.PDFPath(path), d.filename)
			if err := helper.CreateFolder(filepath.Dir(out)); err != nil {
				return created, err
			}
			if err := pdfgen.WriteText(strings.Join(d.pages, "\f"), out, opts); err != nil {
				return created, fmt.Errorf("write sample %s: %w", d.filename, err)
			}
			input.Documents = append(input.Documents, models.InputDocument{Filename: d.filename, Title: d.title})
		}
		if err := helper.WriteJSON(l.InputPath(path), input); err != nil {
			return created, err
		}
		created = append(created, path)
	}
	return created, nil
}
