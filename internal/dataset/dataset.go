package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

//go:embed iris.csv
var irisCSV []byte

// Dataset is a fixed tabular dataset: named numeric feature columns and
// one integer class label per row. Instances are read-only once loaded.
type Dataset struct {
	Name         string
	FeatureNames []string
	ClassNames   []string
	X            *mat.Dense // n x d feature matrix
	Y            []int      // labels in [0, len(ClassNames))
}

// Iris loads the embedded Iris table: 150 rows, 4 features, 3 species.
func Iris() (*Dataset, error) {
	return parseCSV("iris", irisCSV)
}

// Load resolves a dataset by name. "iris" is the only built-in.
func Load(name string) (*Dataset, error) {
	switch name {
	case "", "iris":
		return Iris()
	}
	return nil, fmt.Errorf("unknown dataset: %s", name)
}

func parseCSV(name string, raw []byte) (*Dataset, error) {
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s csv: %w", name, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s csv has no data rows", name)
	}

	header := records[0]
	d := len(header) - 1 // last column is the class
	featureNames := append([]string{}, header[:d]...)

	n := len(records) - 1
	data := make([]float64, 0, n*d)
	labels := make([]int, 0, n)

	var classNames []string
	classIndex := map[string]int{}

	for i, row := range records[1:] {
		if len(row) != d+1 {
			return nil, fmt.Errorf("%s row %d has %d columns, want %d", name, i+1, len(row), d+1)
		}
		for j := 0; j < d; j++ {
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %s: %w", name, i+1, header[j], err)
			}
			data = append(data, v)
		}

		class := row[d]
		idx, ok := classIndex[class]
		if !ok {
			idx = len(classNames)
			classIndex[class] = idx
			classNames = append(classNames, class)
		}
		labels = append(labels, idx)
	}

	return &Dataset{
		Name:         name,
		FeatureNames: featureNames,
		ClassNames:   classNames,
		X:            mat.NewDense(n, d, data),
		Y:            labels,
	}, nil
}

// NumRows returns the number of rows.
func (ds *Dataset) NumRows() int {
	n, _ := ds.X.Dims()
	return n
}

// FeatureIndex resolves a feature column by name.
func (ds *Dataset) FeatureIndex(name string) (int, error) {
	for i, f := range ds.FeatureNames {
		if f == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown feature %q (have %v)", name, ds.FeatureNames)
}

// Select returns a new dataset restricted to the named feature columns,
// in the given order. Labels and class names are shared.
func (ds *Dataset) Select(features ...string) (*Dataset, error) {
	if len(features) == 0 {
		return ds, nil
	}

	cols := make([]int, len(features))
	for i, f := range features {
		idx, err := ds.FeatureIndex(f)
		if err != nil {
			return nil, err
		}
		cols[i] = idx
	}

	n := ds.NumRows()
	data := make([]float64, 0, n*len(cols))
	for i := 0; i < n; i++ {
		for _, j := range cols {
			data = append(data, ds.X.At(i, j))
		}
	}

	return &Dataset{
		Name:         ds.Name,
		FeatureNames: append([]string{}, features...),
		ClassNames:   ds.ClassNames,
		X:            mat.NewDense(n, len(cols), data),
		Y:            ds.Y,
	}, nil
}

// Binary relabels the dataset one-vs-rest: rows of the target class get
// label 1, everything else label 0. Class names become ["rest", target].
func (ds *Dataset) Binary(target string) (*Dataset, error) {
	targetIdx := -1
	for i, c := range ds.ClassNames {
		if c == target {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("unknown class %q (have %v)", target, ds.ClassNames)
	}

	labels := make([]int, len(ds.Y))
	for i, y := range ds.Y {
		if y == targetIdx {
			labels[i] = 1
		}
	}

	return &Dataset{
		Name:         ds.Name,
		FeatureNames: ds.FeatureNames,
		ClassNames:   []string{"rest", target},
		X:            ds.X,
		Y:            labels,
	}, nil
}

// Split shuffles the rows with the given seed and partitions them into
// train and test sets. A testRatio outside (0, 1), or one that rounds
// to zero test rows, returns the full dataset as train and a nil test.
func (ds *Dataset) Split(testRatio float64, seed int64) (train, test *Dataset) {
	n := ds.NumRows()
	_, d := ds.X.Dims()

	if testRatio <= 0 || testRatio >= 1 {
		return ds, nil
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testRatio)
	if nTest == 0 {
		return ds, nil
	}

	subset := func(rows []int) *Dataset {
		data := make([]float64, 0, len(rows)*d)
		labels := make([]int, 0, len(rows))
		for _, r := range rows {
			for j := 0; j < d; j++ {
				data = append(data, ds.X.At(r, j))
			}
			labels = append(labels, ds.Y[r])
		}
		return &Dataset{
			Name:         ds.Name,
			FeatureNames: ds.FeatureNames,
			ClassNames:   ds.ClassNames,
			X:            mat.NewDense(len(rows), d, data),
			Y:            labels,
		}
	}

	return subset(perm[nTest:]), subset(perm[:nTest])
}
