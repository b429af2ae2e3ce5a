package skeleton

import "testing"

func tracked(id int, z float64) Skeleton {
	return Skeleton{ID: id, State: StateTracked, Position: Point3D{Z: z}}
}

func TestSelectTarget(t *testing.T) {
	tests := []struct {
		name      string
		skeletons []Skeleton
		want      int
	}{
		{
			name: "empty set",
			want: -1,
		},
		{
			name: "nothing fully tracked",
			skeletons: []Skeleton{
				{ID: 1, State: StatePositionOnly, Position: Point3D{Z: 1.0}},
				{ID: 2, State: StateNotTracked},
			},
			want: -1,
		},
		{
			name:      "single tracked",
			skeletons: []Skeleton{{State: StateNotTracked}, tracked(7, 2.5)},
			want:      1,
		},
		{
			name:      "nearest wins",
			skeletons: []Skeleton{tracked(1, 2.5), tracked(2, 1.2), tracked(3, 3.0)},
			want:      1,
		},
		{
			name:      "tie keeps first",
			skeletons: []Skeleton{tracked(1, 1.5), tracked(2, 1.5)},
			want:      0,
		},
		{
			name: "position only nearer than tracked is ignored",
			skeletons: []Skeleton{
				{ID: 1, State: StatePositionOnly, Position: Point3D{Z: 0.8}},
				tracked(2, 2.0),
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectTarget(tt.skeletons); got != tt.want {
				t.Errorf("SelectTarget() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSkeleton_Hand(t *testing.T) {
	var sk Skeleton
	sk.Joints[HandLeft] = Joint{Position: Point3D{X: -0.3}, State: Tracked}
	sk.Joints[HandRight] = Joint{Position: Point3D{X: 0.3}, State: Inferred}

	if got := sk.Hand(Left); got.Position.X != -0.3 || got.State != Tracked {
		t.Errorf("Hand(Left) = %+v", got)
	}
	if got := sk.Hand(Right); got.Position.X != 0.3 || got.State != Inferred {
		t.Errorf("Hand(Right) = %+v", got)
	}
}

func TestSideAndStateStrings(t *testing.T) {
	if Left.String() != "left" || Right.String() != "right" {
		t.Errorf("side strings = %q, %q", Left, Right)
	}
	if Tracked.String() != "tracked" || NotTracked.String() != "not_tracked" {
		t.Errorf("state strings = %q, %q", Tracked, NotTracked)
	}
}
