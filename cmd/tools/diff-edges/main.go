// Command diff-edges writes the edge mask between two still images and
// prints the motion score the trap would assign them. It is used to tune
// sobel_thresh and edge_thresh against saved snapshots.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/banshee-data/trapcam/internal/convert"
	"github.com/banshee-data/trapcam/internal/detect"
	"github.com/banshee-data/trapcam/internal/frame"
	"github.com/banshee-data/trapcam/internal/fsutil"
	"github.com/banshee-data/trapcam/internal/output"
	"github.com/banshee-data/trapcam/internal/security"
)

var (
	pathA  = flag.String("a", "", "First image")
	pathB  = flag.String("b", "", "Second image")
	ratio  = flag.Int("ratio", 4, "Downsample ratio")
	thresh = flag.Int("thresh", 15, "Sobel gradient threshold")
	window = flag.String("window", "legacy", "Sobel window: legacy or full")
	out    = flag.String("out", "", "Write the edge mask here (.png, .jpg, .bmp or .tiff); empty prints the score only")
)

func main() {
	flag.Parse()
	if *pathA == "" || *pathB == "" {
		flag.Usage()
		os.Exit(2)
	}
	win, err := detect.ParseWindow(*window)
	if err != nil {
		log.Fatal(err)
	}

	res, err := diffEdges(*pathA, *pathB, *ratio, int16(*thresh), win)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("reduced %dx%d, %d edge pixels above %d (%s window)\n",
		res.mask.Width, res.mask.Height, res.score, *thresh, win)

	if *out != "" {
		if err := saveMask(*out, res.mask); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s\n", *out)
	}
}

type result struct {
	mask  *frame.Luma
	score uint32
}

func diffEdges(a, b string, ratio int, thresh int16, win detect.Window) (*result, error) {
	la, err := loadLuma(a, ratio)
	if err != nil {
		return nil, err
	}
	lb, err := loadLuma(b, ratio)
	if err != nil {
		return nil, err
	}
	if !la.SameSize(lb) {
		return nil, fmt.Errorf("%s is %dx%d reduced but %s is %dx%d", a, la.Width, la.Height, b, lb.Width, lb.Height)
	}
	if la.Width < 3 || la.Height < 3 {
		return nil, fmt.Errorf("ratio %d leaves a %dx%d frame, too small for edges", ratio, la.Width, la.Height)
	}
	return &result{
		mask:  detect.DiffEdges(la, lb, thresh, win),
		score: detect.Compare(la, lb, thresh, win),
	}, nil
}

// loadLuma decodes path and downsamples its luma the way the score stage
// does.
func loadLuma(path string, ratio int) (*frame.Luma, error) {
	if ratio < 1 {
		return nil, fmt.Errorf("ratio must be at least 1, got %d", ratio)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	b := img.Bounds()
	v := frame.NewView(convert.ImageToGray(img), b.Dx(), frame.FormatGray)
	return detect.Downsample(v, b.Dx(), b.Dy(), ratio), nil
}

func saveMask(path string, mask *frame.Luma) error {
	enc, err := output.EncodingForPath(path)
	if err != nil {
		return err
	}
	if err := security.ValidateOutputPath(path); err != nil {
		return err
	}
	return output.NewSaver(fsutil.OSFileSystem{}, enc, 95).EncodeAndSave(path, mask.Gray())
}
