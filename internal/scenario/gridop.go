package scenario

import (
	"github.com/banshee-data/gridcheck/internal/grid"
	"github.com/banshee-data/gridcheck/internal/regress"
	"github.com/banshee-data/gridcheck/internal/solver"
)

const (
	floatThreshold       = 1e-8
	floatThresholdStrict = 1e-14
	intThreshold         = 1e-14
	intThresholdStrict   = 1e-14
)

func init() {
	Register(Case{
		ID:          "gridop",
		Description: "basic grid operators on real, vector and integer grids",
		Size:        solver.Vec3i{X: 10, Y: 20, Z: 30},
		Dims:        3,
		Build:       buildGridOp,
	})
	Register(Case{
		ID:          "gridop_2d",
		Description: "grid operators on a single-slice 2D domain",
		Size:        solver.Vec3i{X: 10, Y: 20, Z: 1},
		Dims:        2,
		Build:       buildGridOp,
	})
}

func buildGridOp(s *solver.Solver, generate bool) ([]regress.Check, error) {
	rlg1, rlg2, rlg3 := grid.NewReal(s), grid.NewReal(s), grid.NewReal(s)
	vcg1, vcg2, vcg3 := grid.NewVec3(s), grid.NewVec3(s), grid.NewVec3(s)
	int1, int2, int3 := grid.NewInt(s), grid.NewInt(s), grid.NewInt(s)

	if generate {
		rlg1.SetConstant(1.1)
		rlg2.SetConstant(1.2)
		rlg3.SetConstant(2.9)

		vcg1.SetConstant(grid.Splat(1.2))
		vcg2.SetConstant(grid.Splat(0.5))
		vcg3.SetConstant(grid.Splat(1.95))

		int1.SetConstant(125)
		int2.SetConstant(6)
		int3.SetConstant(143)
	} else {
		if err := realOps(rlg1, rlg2, rlg3); err != nil {
			return nil, err
		}
		if err := vecOps(vcg1, vcg2, vcg3); err != nil {
			return nil, err
		}
		if err := intOps(int1, int2, int3); err != nil {
			return nil, err
		}
	}

	return []regress.Check{
		{Name: "rlg1", Field: rlg1, Threshold: floatThreshold, ThresholdStrict: floatThresholdStrict},
		{Name: "rlg2", Field: rlg2, Threshold: floatThreshold, ThresholdStrict: floatThresholdStrict},
		{Name: "rlg3", Field: rlg3, Threshold: floatThreshold, ThresholdStrict: floatThresholdStrict},
		{Name: "vcg1", Field: vcg1, Threshold: floatThreshold, ThresholdStrict: floatThresholdStrict},
		{Name: "vcg2", Field: vcg2, Threshold: floatThreshold, ThresholdStrict: floatThresholdStrict},
		{Name: "vcg3", Field: vcg3, Threshold: floatThreshold, ThresholdStrict: floatThresholdStrict},
		{Name: "int1", Field: int1, Threshold: intThreshold, ThresholdStrict: intThresholdStrict},
		{Name: "int2", Field: int2, Threshold: intThreshold, ThresholdStrict: intThresholdStrict},
		{Name: "int3", Field: int3, Threshold: intThreshold, ThresholdStrict: intThresholdStrict},
	}, nil
}

func realOps(g1, g2, g3 *grid.Grid[grid.Real]) error {
	g1.SetConstant(1.0)
	g2.SetConstant(2.4)
	g3.SetConstant(9.6)
	g1.AddConst(0.1)                        // 1.1
	g2.MultConst(0.5)                       // 1.2
	if err := g3.CopyFrom(g1); err != nil { // 1.1
		return err
	}
	if err := g3.Add(g2); err != nil { // 2.3
		return err
	}
	return g3.AddScaled(g2, 0.5) // 2.9
}

func vecOps(g1, g2, g3 *grid.Grid[grid.Vec3]) error {
	g1.SetConstant(grid.Splat(1.0))
	g2.SetConstant(grid.Splat(1.0))
	g3.SetConstant(grid.Splat(9.0))
	g1.AddConst(grid.Splat(0.2))            // 1.2
	g2.MultConst(grid.Splat(0.5))           // 0.5
	if err := g3.CopyFrom(g1); err != nil { // 1.2
		return err
	}
	if err := g3.Add(g2); err != nil { // 1.7
		return err
	}
	return g3.AddScaled(g2, grid.Splat(0.5)) // 1.95
}

func intOps(g1, g2, g3 *grid.Grid[grid.Int]) error {
	g1.SetConstant(123)
	g2.SetConstant(2)
	g3.SetConstant(9)
	g1.AddConst(2)                          // 125
	g2.MultConst(3)                         // 6
	if err := g3.CopyFrom(g1); err != nil { // 125
		return err
	}
	if err := g3.Add(g2); err != nil { // 131
		return err
	}
	return g3.AddScaled(g2, 2) // 143
}
