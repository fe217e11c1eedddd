//Package record stores cloth trajectories in HDF5 files.
//
//A recording holds one frame every Every ticks. Each dataset has the frame as
//its first dimension:
//
//	positions   float32 [frames][particles][3]
//	velocities  float32 [frames][particles][3]
//	time        float64 [frames]
//	wind        float32 [frames]
//
//A "config" dataset with a null dataspace carries the preset and the
//creation time as string attributes.
package record

const (
	//ErrTypeRecord is reported for recordings that cannot be created or
	//written.
	ErrTypeRecord = "record_failed"
)

//Options configures a recording.
type Options struct {
	//Path of the output file. Parent directories are created.
	Path string

	//Ticks is the number of simulation ticks that will be run.
	Ticks int

	//Every records one frame each Every ticks. Values below 1 record every tick.
	Every int

	//Particles is the particle count of the recorded cloth.
	Particles int

	//Attributes are stored on the config dataset, e.g. the encoded preset.
	Attributes map[string]string
}

//Frames returns how many frames a run of ticks records when sampling every
//every ticks. The state before the first tick is always recorded.
func Frames(ticks int, every int) int {
	if every < 1 {
		every = 1
	}
	if ticks < 0 {
		ticks = 0
	}
	return ticks/every + 1
}
