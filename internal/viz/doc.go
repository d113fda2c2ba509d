// Package viz is a terminal live view of a running muscle simulation built
// on Bubble Tea.
//
// The left panel draws the actuators on a braille [Canvas]: tendons as
// straight segments and fibers as zigzags whose swing grows with
// activation. The right panel plots force and fiber length with asciigraph
// and lists the solver state of the latest step.
//
// # Key Bindings
//
//	Space     - Pause/Resume
//	Up/K      - Raise activation of the selected channel
//	Down/J    - Lower activation of the selected channel
//	Left/Right - Select activation channel
//	Tab       - Cycle parameters
//	+/-       - Scale the selected parameter by 5%
//	T         - Cycle themes
//	?         - Toggle help
//	Q         - Quit
package viz
