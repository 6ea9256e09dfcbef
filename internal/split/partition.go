package split

import (
	"context"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"

	"dataprep/internal/imageio"
)

// Sets holds disjoint file lists produced by Partition.
type Sets struct {
	Train      []string
	Test       []string
	Validation []string
}

// Partitioner splits a completed directory of images by exact ratios,
// sampling without replacement. It is not safe for concurrent use.
type Partitioner struct {
	rng *rand.Rand
}

func NewPartitioner(seed uint64) *Partitioner {
	return &Partitioner{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Partition samples testPercent of all image files under dir as test. When
// trainPercent+testPercent reaches 100 the rest is train; otherwise
// trainPercent of all files is sampled from the rest as train and whatever
// remains is validation.
func (p *Partitioner) Partition(ctx context.Context, dir string, trainPercent, testPercent float64) (Sets, error) {
	if trainPercent < 0 || testPercent < 0 || trainPercent+testPercent > 100 {
		return Sets{}, fmt.Errorf("invalid ratios train=%v test=%v", trainPercent, testPercent)
	}
	files, err := listImages(ctx, dir)
	if err != nil {
		return Sets{}, err
	}
	total := len(files)
	p.rng.Shuffle(total, func(i, j int) { files[i], files[j] = files[j], files[i] })

	nTest := int(float64(total) * testPercent / 100)
	sets := Sets{Test: files[:nTest]}
	rest := files[nTest:]
	if trainPercent+testPercent >= 100 {
		sets.Train = rest
		return sets, nil
	}
	nTrain := min(int(float64(total)*trainPercent/100), len(rest))
	sets.Train = rest[:nTrain]
	sets.Validation = rest[nTrain:]
	return sets, nil
}

// Apply moves every file of sets into dir/{train,test,validation}.
func Apply(ctx context.Context, dir string, sets Sets) error {
	groups := []struct {
		split Split
		files []string
	}{
		{Train, sets.Train},
		{Test, sets.Test},
		{Validation, sets.Validation},
	}
	for _, g := range groups {
		if len(g.files) == 0 {
			continue
		}
		dst := g.split.Dir(dir)
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dst, err)
		}
		for _, src := range g.files {
			if err := ctx.Err(); err != nil {
				return err
			}
			target := filepath.Join(dst, filepath.Base(src))
			if src == target {
				continue
			}
			if err := os.Rename(src, target); err != nil {
				return fmt.Errorf("move %s: %w", src, err)
			}
		}
	}
	return nil
}

func listImages(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && imageio.IsImageFile(d.Name()) {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			files = append(files, abs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return files, nil
}
