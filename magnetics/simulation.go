package magnetics

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/notargets/gomag/mesh"
	"github.com/notargets/gomag/types"
	"github.com/notargets/gomag/utils"
)

type SimulationState uint8

const (
	Unbuilt SimulationState = iota
	KernelAssembled
	MatrixMaterialized
)

var simulationStateNames = []string{"Unbuilt", "KernelAssembled", "MatrixMaterialized"}

func (s SimulationState) String() string {
	if int(s) < len(simulationStateNames) {
		return simulationStateNames[s]
	}
	return fmt.Sprintf("SimulationState(%d)", uint8(s))
}

/*
Simulation predicts the data of a survey for a model over the active cells of a mesh.
With forwardOnly the sensitivities are recomputed on every Predict, otherwise the dense matrix
is assembled on first use and reused.
*/
type Simulation struct {
	survey      *Survey
	active      *ActiveCells
	activeCells []mesh.Cell
	modelType   types.ModelType
	forwardOnly bool
	procLimit   int
	remanence   []float64 // Block layout, nil when unset
	logger      *zap.Logger

	mu        sync.Mutex
	state     SimulationState
	surveyGen uint64 // Survey generation the kernel geometry was assembled against
	ks        *sensitivity
	op        Operator
}

func NewSimulation(survey *Survey, cells []mesh.Cell, activeMask []bool, modelType types.ModelType,
	forwardOnly bool, procLimit int) (sim *Simulation, err error) {
	if survey == nil {
		err = fmt.Errorf("simulation needs a survey: %w", ErrConfiguration)
		return
	}
	if !modelType.IsValid() {
		err = fmt.Errorf("unknown model type %v: %w", modelType, ErrConfiguration)
		return
	}
	if len(activeMask) != len(cells) {
		err = fmt.Errorf("active mask has length %d, mesh has %d cells: %w", len(activeMask), len(cells), ErrDimension)
		return
	}
	var active *ActiveCells
	if active, err = NewActiveCells(activeMask); err != nil {
		return
	}
	activeCells := make([]mesh.Cell, active.NC())
	for j, i := range active.Indices() {
		if err = cells[i].Validate(); err != nil {
			err = fmt.Errorf("cell %d: %v: %w", i, err, ErrGeometry)
			return
		}
		activeCells[j] = cells[i]
	}
	sim = &Simulation{
		survey:      survey,
		active:      active,
		activeCells: activeCells,
		modelType:   modelType,
		forwardOnly: forwardOnly,
		procLimit:   procLimit,
		logger:      zap.NewNop(),
	}
	return
}

func (sim *Simulation) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.logger = logger
	if sim.ks != nil {
		sim.ks.logger = logger
	}
}

/*
SetRemanence sets a remanent effective susceptibility per active cell, added to vector models
before the operator is applied. Susceptibility models are induced only and ignore it.
Passing nil clears it.
*/
func (sim *Simulation) SetRemanence(remanence [][3]float64) (err error) {
	if remanence == nil {
		sim.mu.Lock()
		sim.remanence = nil
		sim.mu.Unlock()
		return
	}
	nC := sim.NC()
	if err = checkLength("remanence", len(remanence), nC); err != nil {
		return
	}
	rem := make([]float64, 3*nC)
	for j, r := range remanence {
		for b := 0; b < 3; b++ {
			rem[j+b*nC] = r[b]
		}
	}
	if !utils.IsFinite(rem...) {
		err = fmt.Errorf("remanence has non finite values: %w", ErrConfiguration)
		return
	}
	sim.mu.Lock()
	sim.remanence = rem
	sim.mu.Unlock()
	return
}

func (sim *Simulation) Survey() *Survey { return sim.survey }

func (sim *Simulation) ActiveCells() *ActiveCells { return sim.active }

func (sim *Simulation) ModelType() types.ModelType { return sim.modelType }

func (sim *Simulation) ForwardOnly() bool { return sim.forwardOnly }

func (sim *Simulation) NC() int { return sim.active.NC() }

// NP is the model length, nC or 3nC
func (sim *Simulation) NP() int { return sim.NC() * sim.modelType.ParamsPerCell() }

func (sim *Simulation) State() SimulationState {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.state
}

/*
Operator returns the sensitivity operator, assembling it on first use. When the survey layout
was invalidated since the last assembly, the operator is rebuilt for the new layout.
*/
func (sim *Simulation) Operator() (op Operator, err error) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	if sim.state != Unbuilt && sim.survey.Generation() != sim.surveyGen {
		sim.logger.Debug("survey layout changed, dropping the sensitivity operator",
			zap.Uint64("assembled", sim.surveyGen),
			zap.Uint64("current", sim.survey.Generation()))
		sim.state, sim.ks, sim.op = Unbuilt, nil, nil
	}
	if err = sim.assemble(); err != nil {
		return
	}
	if sim.op == nil {
		if sim.forwardOnly || sim.ks.nD == 0 {
			sim.op = newLazyOperator(sim.ks)
		} else {
			var dense *DenseOperator
			if dense, err = newDenseOperator(sim.ks); err != nil {
				return
			}
			sim.op = dense
			sim.state = MatrixMaterialized
		}
	}
	op = sim.op
	return
}

// assemble fixes the kernel geometry: active cells, survey rows and field scaling
func (sim *Simulation) assemble() (err error) {
	if sim.state != Unbuilt {
		return
	}
	sim.surveyGen = sim.survey.Generation()
	field := sim.survey.Field()
	if _, err = NewInducingField(field.Intensity, field.Inclination, field.Declination); err != nil {
		return
	}
	sim.ks = &sensitivity{
		cells:     sim.activeCells,
		dir:       field.Direction(),
		scale:     field.KernelScale(),
		modelType: sim.modelType,
		stations:  stationsFromSurvey(sim.survey),
		nD:        sim.survey.ND(),
		procLimit: sim.procLimit,
		logger:    sim.logger,
	}
	sim.state = KernelAssembled
	sim.logger.Debug("kernel geometry assembled",
		zap.Stringer("modelType", sim.modelType),
		zap.Int("nC", sim.NC()), zap.Int("nD", sim.ks.nD),
		zap.Int("stations", len(sim.ks.stations)),
		zap.Bool("forwardOnly", sim.forwardOnly))
	return
}

// Predict returns the data for model, ordered as the survey blocks
func (sim *Simulation) Predict(model []float64) (data []float64, err error) {
	if err = checkLength(fmt.Sprintf("%v model", sim.modelType), len(model), sim.NP()); err != nil {
		return
	}
	if !utils.IsFinite(model...) {
		err = fmt.Errorf("model has non finite values: %w", ErrConfiguration)
		return
	}
	var op Operator
	if op, err = sim.Operator(); err != nil {
		return
	}
	sim.mu.Lock()
	remanence := sim.remanence
	sim.mu.Unlock()
	m := model
	switch sim.modelType {
	case types.Susceptibility:
	case types.Vector:
		if remanence != nil {
			m = make([]float64, len(model))
			for i := range model {
				m[i] = model[i] + remanence[i]
			}
		}
	default:
		panic(fmt.Errorf("unhandled model type %v", sim.modelType))
	}
	return op.Apply(m)
}
