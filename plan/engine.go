package plan

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/index"
	"github.com/xiaobogaga/sparqlagg/vocab"
)

// Reduce applies desc's kernel to run [Start, End] of rows and returns the
// single output Id it contributes, per spec.md §4.5. inputType is the
// ResultType of desc.InCol; inputVocab resolves STRING cells against the
// sub-result's LocalVocab; outputVocab is where GROUP_CONCAT appends its
// built string.
func Reduce(desc AggregateDescriptor, inputType id.ResultType, rows [][]id.Id, run Run, idx index.Index, inputVocab, outputVocab *vocab.LocalVocab) (id.Id, error) {
	switch desc.Kind {
	case Count:
		return reduceCount(desc, rows, run), nil
	case Sum:
		return reduceSumAvg(desc, inputType, rows, run, idx, false)
	case Avg:
		return reduceSumAvg(desc, inputType, rows, run, idx, true)
	case Min:
		return reduceMinMax(desc, inputType, rows, run, true)
	case Max:
		return reduceMinMax(desc, inputType, rows, run, false)
	case Sample, Last:
		return rows[run.End][desc.InCol], nil
	case First:
		return rows[run.Start][desc.InCol], nil
	case GroupConcat:
		return reduceGroupConcat(desc, inputType, rows, run, idx, inputVocab, outputVocab)
	default:
		return 0, errors.Errorf("plan: unknown aggregate kind %v", desc.Kind)
	}
}

func reduceCount(desc AggregateDescriptor, rows [][]id.Id, run Run) id.Id {
	if !desc.Distinct {
		return id.EncodeVerbatim(int64(run.End - run.Start + 1))
	}
	seen := make(map[id.Id]struct{}, run.End-run.Start+1)
	for i := run.Start; i <= run.End; i++ {
		seen[rows[i][desc.InCol]] = struct{}{}
	}
	return id.EncodeVerbatim(int64(len(seen)))
}

func reduceSumAvg(desc AggregateDescriptor, inputType id.ResultType, rows [][]id.Id, run Run, idx index.Index, isAvg bool) (id.Id, error) {
	nan := id.EncodeFloat(float32(math.NaN()))

	if inputType == id.String || inputType == id.Text {
		return nan, nil
	}

	var seen map[id.Id]struct{}
	if desc.Distinct {
		seen = make(map[id.Id]struct{})
	}

	sum := 0.0
	for i := run.Start; i <= run.End; i++ {
		raw := rows[i][desc.InCol]
		if seen != nil {
			if _, dup := seen[raw]; dup {
				continue
			}
			seen[raw] = struct{}{}
		}
		switch inputType {
		case id.Verbatim:
			sum += float64(id.DecodeVerbatim(raw))
		case id.Float:
			sum += float64(id.DecodeFloat(raw))
		case id.KB:
			word, err := idx.IdToString(raw)
			if err != nil {
				return 0, err
			}
			if !id.StartsWith(word, id.ValueFloatPrefix) || len(word) < 2 {
				return nan, nil
			}
			f, err := id.ConvertIndexWordToFloatValue(word[1 : len(word)-1])
			if err != nil {
				return nan, nil
			}
			sum += float64(f)
		default:
			return nan, nil
		}
	}

	if !isAvg {
		return id.EncodeFloat(float32(sum)), nil
	}
	// AVG's divisor is the run length regardless of DISTINCT — a
	// documented source peculiarity preserved literally (spec.md §9).
	avg := sum / float64(run.End-run.Start+1)
	return id.EncodeFloat(float32(avg)), nil
}

func reduceMinMax(desc AggregateDescriptor, inputType id.ResultType, rows [][]id.Id, run Run, wantMin bool) (id.Id, error) {
	if inputType == id.String || inputType == id.Text {
		return id.NoValue, nil
	}
	best := rows[run.Start][desc.InCol]
	bestFloat := float64(0)
	if inputType == id.Float {
		bestFloat = float64(id.DecodeFloat(best))
	}
	for i := run.Start + 1; i <= run.End; i++ {
		cur := rows[i][desc.InCol]
		if inputType == id.Float {
			f := float64(id.DecodeFloat(cur))
			if (wantMin && f < bestFloat) || (!wantMin && f > bestFloat) {
				best, bestFloat = cur, f
			}
			continue
		}
		// VERBATIM, KB: numeric/lexicographic order over the raw Id.
		if (wantMin && cur < best) || (!wantMin && cur > best) {
			best = cur
		}
	}
	return best, nil
}

func reduceGroupConcat(desc AggregateDescriptor, inputType id.ResultType, rows [][]id.Id, run Run, idx index.Index, inputVocab, outputVocab *vocab.LocalVocab) (id.Id, error) {
	var seen map[id.Id]struct{}
	if desc.Distinct {
		seen = make(map[id.Id]struct{})
	}
	var parts []string
	for i := run.Start; i <= run.End; i++ {
		raw := rows[i][desc.InCol]
		if seen != nil {
			if _, dup := seen[raw]; dup {
				continue
			}
			seen[raw] = struct{}{}
		}
		text, err := decodeForConcat(raw, inputType, idx, inputVocab)
		if err != nil {
			return 0, err
		}
		parts = append(parts, text)
	}
	joined := strings.Join(parts, desc.Separator)
	idx2 := outputVocab.Push(joined)
	return id.Id(idx2), nil
}

func decodeForConcat(raw id.Id, inputType id.ResultType, idx index.Index, inputVocab *vocab.LocalVocab) (string, error) {
	switch inputType {
	case id.Verbatim:
		return strconv.FormatInt(id.DecodeVerbatim(raw), 10), nil
	case id.Float:
		return strconv.FormatFloat(float64(id.DecodeFloat(raw)), 'g', -1, 32), nil
	case id.Text:
		return idx.GetTextExcerpt(raw)
	case id.String:
		return inputVocab.Resolve(int(raw)), nil
	case id.KB:
		word, err := idx.IdToString(raw)
		if err != nil {
			return "", err
		}
		if id.StartsWith(word, id.ValuePrefix) {
			return id.ConvertIndexWordToValueLiteral(word), nil
		}
		return word, nil
	default:
		return "", errors.Errorf("plan: GROUP_CONCAT over unsupported input type %v", inputType)
	}
}
