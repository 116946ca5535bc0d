package graph

import "github.com/helixir/paper-aggregator/internal/domain"

var (
	molecules = domain.PaperRecord{
		PaperUID: "uid-molecules",
		Title:    "Graph neural networks for molecules",
		Abstract: "We apply graph neural networks to molecular property prediction.",
		Authors:  []string{"Ada Lovelace", "Alan Turing"},
		Year:     2020,
		Source:   domain.SourceTypeScholarGraph,
	}
	proteins = domain.PaperRecord{
		PaperUID: "uid-proteins",
		Title:    "Graph neural networks for proteins",
		Abstract: "We apply graph neural networks to protein property prediction.",
		Authors:  []string{"alan turing ", " Ada Lovelace"},
		Year:     2020,
		Source:   domain.SourceTypeWorkIndex,
	}
	agriculture = domain.PaperRecord{
		PaperUID: "uid-agriculture",
		Title:    "Medieval agricultural yields",
		Abstract: "Harvest records from monastic estates.",
		Authors:  []string{"Marc Bloch"},
		Year:     1990,
		Source:   domain.SourceTypeCitationRegistry,
	}
	moleculesPreprint = domain.PaperRecord{
		URL:    "http://arxiv.org/abs/1",
		Title:  "Graph neural networks for molecules",
		Year:   2014,
		Source: domain.SourceTypePreprintArchive,
	}
)
