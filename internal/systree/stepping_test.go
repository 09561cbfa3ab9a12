package systree_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/systree/internal/orbit"
	"github.com/san-kum/systree/internal/systree"
	"gonum.org/v1/gonum/spatial/r2"
)

func fixed() *orbit.Orbit {
	o := orbit.Fixed()
	return &o
}

func circular(r, w, phase float64) *orbit.Orbit {
	o := orbit.NewCircular(r, w, phase)
	return &o
}

func clocks(tree *systree.Tree) map[string]int64 {
	out := map[string]int64{}
	tree.Walk(func(v systree.NodeView) { out[v.Path] = v.Time })
	return out
}

func byOwner(reports []systree.Report) map[string]systree.Report {
	out := map[string]systree.Report{}
	for _, r := range reports {
		out[r.Body.Owner] = r
	}
	return out
}

var _ = Describe("Tree stepping", func() {
	Context("with three nested clocks", func() {
		var tree *systree.Tree

		BeforeEach(func() {
			var err error
			tree, err = systree.Build(systree.NodeSpec{
				Name: "outer", Tick: 10, Radius: 1000, Orbit: fixed(),
				Bodies: []systree.Body{systree.NewBody("far", r2.Vec{X: 500}, r2.Vec{Y: 1}, 0)},
				Children: []systree.NodeSpec{{
					Name: "middle", Tick: 5, Radius: 100, Orbit: fixed(),
					Bodies: []systree.Body{systree.NewBody("mid", r2.Vec{X: 50}, r2.Vec{Y: 1}, 0)},
					Children: []systree.NodeSpec{{
						Name: "inner", Tick: 1, Radius: 10, Orbit: fixed(),
						Bodies: []systree.Body{systree.NewBody("near", r2.Vec{}, r2.Vec{Y: 1}, 0)},
					}},
				}},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("advances every level on the first step", func() {
			got := byOwner(tree.Step())
			Expect(got).To(HaveLen(3))

			Expect(got["near"].Time).To(Equal(int64(1)))
			Expect(got["near"].Body.Position.Y).To(BeNumerically("~", 1, 1e-12))
			Expect(got["mid"].Time).To(Equal(int64(5)))
			Expect(got["mid"].Body.Position.Y).To(BeNumerically("~", 5, 1e-12))
			Expect(got["far"].Time).To(Equal(int64(10)))
			Expect(got["far"].Body.Position.Y).To(BeNumerically("~", 10, 1e-12))
		})

		It("holds the parents while the innermost clock catches up", func() {
			tree.Step()
			reports := tree.Step()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Body.Owner).To(Equal("near"))
			Expect(reports[0].Time).To(Equal(int64(2)))
			Expect(tree.Time()).To(Equal(int64(10)))
		})

		It("never lets a child run ahead of its parent", func() {
			for i := 0; i < 11; i++ {
				tree.Step()
				c := clocks(tree)
				Expect(c["outer/middle"]).To(BeNumerically("<=", c["outer"]))
				Expect(c["outer/middle/inner"]).To(BeNumerically("<=", c["outer/middle"]))
			}
			Expect(clocks(tree)).To(Equal(map[string]int64{
				"outer":              20,
				"outer/middle":       15,
				"outer/middle/inner": 11,
			}))
		})
	})

	Context("when a body leaves its system", func() {
		It("hands it to the parent and drifts it to the parent's time", func() {
			tree, err := systree.Build(systree.NodeSpec{
				Tick: 10, Radius: 1000, Orbit: fixed(),
				Children: []systree.NodeSpec{{
					Name: "pod", Tick: 1, Radius: 3, Orbit: fixed(),
					Bodies: []systree.Body{systree.NewBody("crew", r2.Vec{}, r2.Vec{Y: 1}, 0)},
				}},
			})
			Expect(err).NotTo(HaveOccurred())

			for want := 1; want <= 3; want++ {
				reports := tree.Step()
				Expect(reports).To(HaveLen(1))
				Expect(reports[0].Time).To(Equal(int64(want)))
				Expect(reports[0].Body.Position.Y).To(BeNumerically("~", float64(want), 1e-12))
			}

			reports := tree.Step()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Time).To(Equal(int64(10)))
			Expect(reports[0].Body.Position.Y).To(BeNumerically("~", 10, 1e-12))
			Expect(tree.Count()).To(Equal(1))

			reports = tree.Step()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Time).To(Equal(int64(20)))
			Expect(reports[0].Body.Position.Y).To(BeNumerically("~", 20, 1e-12))
		})
	})

	Context("when a body passes through a child", func() {
		It("keeps its straight line through both frames", func() {
			tree, err := systree.Build(systree.NodeSpec{
				Tick: 10, Radius: 1e4, Orbit: fixed(),
				Bodies: []systree.Body{systree.NewBody("ship", r2.Vec{}, r2.Vec{X: 1}, 0)},
				Children: []systree.NodeSpec{{
					Name: "gate", Tick: 2, Radius: 10, Orbit: circular(50, 0, 0),
				}},
			})
			Expect(err).NotTo(HaveOccurred())

			fine := 0
			for i := 0; i < 20; i++ {
				for _, r := range tree.Step() {
					Expect(r.Body.Position.X).To(BeNumerically("~", float64(r.Time), 1e-9))
					Expect(r.Body.Position.Y).To(BeNumerically("~", 0, 1e-9))
					if r.Time%10 != 0 {
						fine++
					}
				}
			}
			Expect(fine).To(BeNumerically(">", 0))
			Expect(tree.Count()).To(Equal(1))
		})
	})

	Context("when a body arrives ahead of the child's clock", func() {
		var tree *systree.Tree

		BeforeEach(func() {
			var err error
			tree, err = systree.Build(systree.NodeSpec{
				Tick: 10, Radius: 1000, Orbit: fixed(),
				Bodies: []systree.Body{systree.NewBody("visitor", r2.Vec{X: -14}, r2.Vec{X: 1}, 0)},
				Children: []systree.NodeSpec{{
					Name: "dock", Tick: 1, Radius: 5, Orbit: fixed(),
					Bodies: []systree.Body{systree.NewBody("resident", r2.Vec{}, r2.Vec{}, 0)},
				}},
			})
			Expect(err).NotTo(HaveOccurred())
			tree.Step()
		})

		It("queues it at its arrival time", func() {
			var dock systree.NodeView
			tree.Walk(func(v systree.NodeView) {
				if v.Name == "dock" {
					dock = v
				}
			})
			Expect(dock.Time).To(Equal(int64(1)))
			Expect(dock.Queued).To(Equal(1))
			Expect(dock.Owned).To(Equal(1))

			r, ok := tree.Find("visitor")
			Expect(ok).To(BeTrue())
			Expect(r.Time).To(Equal(int64(10)))
			Expect(r.Body.Position.X).To(BeNumerically("~", -4, 1e-12))
		})

		It("keeps queued bodies when cloning for a single owner", func() {
			fork := tree.CloneRetaining("visitor")
			Expect(fork.Count()).To(Equal(1))
			Expect(tree.CloneRetaining("ghost").Count()).To(Equal(0))
			Expect(tree.Count()).To(Equal(2))

			reports := fork.Step()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Body.Owner).To(Equal("visitor"))
			Expect(reports[0].Time).To(Equal(int64(10)))
			Expect(reports[0].Body.Position.X).To(BeNumerically("~", -4, 1e-12))
		})
	})
	Context("when a body enters an empty child", func() {
		It("jumps the child's clock to the arrival", func() {
			tree, err := systree.Build(systree.NodeSpec{
				Tick: 10, Radius: 1000, Orbit: fixed(),
				Bodies: []systree.Body{systree.NewBody("visitor", r2.Vec{X: -14}, r2.Vec{X: 1}, 0)},
				Children: []systree.NodeSpec{{
					Name: "dock", Tick: 1, Radius: 5, Orbit: fixed(),
				}},
			})
			Expect(err).NotTo(HaveOccurred())
			tree.Step()

			var dock systree.NodeView
			tree.Walk(func(v systree.NodeView) {
				if v.Name == "dock" {
					dock = v
				}
			})
			Expect(dock.Time).To(Equal(int64(10)))
			Expect(dock.Queued).To(Equal(0))
			Expect(dock.Owned).To(Equal(1))

			r, ok := tree.Find("visitor")
			Expect(ok).To(BeTrue())
			Expect(r.Time).To(Equal(int64(10)))
			Expect(r.Body.Position.X).To(BeNumerically("~", -4, 1e-12))
		})
	})
})
