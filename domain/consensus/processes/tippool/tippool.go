package tippool

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// ErrNoTipsAvailable is returned by SelectTips when the pool holds no
// non-lazy tip.
var ErrNoTipsAvailable = errors.New("no tips available")

type tip struct {
	blockID  externalapi.BlockID
	score    model.TipScore
	sequence uint64
}

type tipPool struct {
	blockStore         model.BlockStore
	maxTips            int
	belowMaxDepth      externalapi.MilestoneIndex
	tipSafetyThreshold externalapi.MilestoneIndex
	ymrsiDelta         externalapi.MilestoneIndex
	omrsiDelta         externalapi.MilestoneIndex

	mtx      sync.Mutex
	tips     map[externalapi.BlockID]*tip
	sequence uint64
}

// New instantiates a new TipPool
func New(blockStore model.BlockStore, maxTips int, belowMaxDepth, tipSafetyThreshold,
	ymrsiDelta, omrsiDelta externalapi.MilestoneIndex) model.TipPool {

	return &tipPool{
		blockStore:         blockStore,
		maxTips:            maxTips,
		belowMaxDepth:      belowMaxDepth,
		tipSafetyThreshold: tipSafetyThreshold,
		ymrsiDelta:         ymrsiDelta,
		omrsiDelta:         omrsiDelta,
		tips:               make(map[externalapi.BlockID]*tip),
	}
}

func (tp *tipPool) isSynced() bool {
	latestIndex := tp.blockStore.LatestMilestoneIndex()
	solidIndex := tp.blockStore.SolidMilestoneIndex()
	return latestIndex <= solidIndex || latestIndex-solidIndex <= tp.belowMaxDepth+tp.tipSafetyThreshold
}

func (tp *tipPool) AddTip(candidate *model.SolidifiedBlock) bool {
	if !tp.isSynced() {
		return false
	}
	score, ok := tp.score(candidate.BlockID)
	if !ok || score == model.TipScoreLazy {
		return false
	}

	tp.mtx.Lock()
	defer tp.mtx.Unlock()

	for _, parent := range candidate.Parents {
		delete(tp.tips, parent)
	}
	if _, exists := tp.tips[candidate.BlockID]; exists {
		return true
	}
	tp.sequence++
	tp.tips[candidate.BlockID] = &tip{blockID: candidate.BlockID, score: score, sequence: tp.sequence}
	for len(tp.tips) > tp.maxTips {
		worst := tp.sortedTips()[len(tp.tips)-1]
		log.Tracef("Tip pool is full, evicting %s", worst.blockID)
		delete(tp.tips, worst.blockID)
	}
	return true
}

// Update rescores every tip against the current confirmed milestone index
// and evicts the ones that became lazy.
func (tp *tipPool) Update() {
	tp.mtx.Lock()
	defer tp.mtx.Unlock()

	evicted := 0
	for blockID, tip := range tp.tips {
		score, ok := tp.score(blockID)
		if !ok || score == model.TipScoreLazy {
			delete(tp.tips, blockID)
			evicted++
			continue
		}
		tip.score = score
	}
	if evicted > 0 {
		log.Debugf("Evicted %d lazy tips, %d tips left", evicted, len(tp.tips))
	}
}

func (tp *tipPool) Tips() []externalapi.BlockID {
	tp.mtx.Lock()
	defer tp.mtx.Unlock()

	sorted := tp.sortedTips()
	blockIDs := make([]externalapi.BlockID, len(sorted))
	for i, tip := range sorted {
		blockIDs[i] = tip.blockID
	}
	return blockIDs
}

// SelectTips returns up to count tips, non-lazy ones first and newer ones
// before older ones.
func (tp *tipPool) SelectTips(count int) ([]externalapi.BlockID, error) {
	tips := tp.Tips()
	if len(tips) == 0 {
		return nil, errors.WithStack(ErrNoTipsAvailable)
	}
	if count < len(tips) {
		tips = tips[:count]
	}
	externalapi.SortBlockIDs(tips)
	return tips, nil
}

func (tp *tipPool) Count() int {
	tp.mtx.Lock()
	defer tp.mtx.Unlock()
	return len(tp.tips)
}

// sortedTips orders the tips from the best to the worst
func (tp *tipPool) sortedTips() []*tip {
	sorted := make([]*tip, 0, len(tp.tips))
	for _, tip := range tp.tips {
		sorted = append(sorted, tip)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].score != sorted[j].score {
			return sorted[i].score > sorted[j].score
		}
		return sorted[i].sequence > sorted[j].sequence
	})
	return sorted
}

// score classifies a block by how far its bounds lag behind the confirmed
// milestone index. Referenced blocks are never lazy.
func (tp *tipPool) score(blockID externalapi.BlockID) (model.TipScore, bool) {
	metadata, ok := tp.blockStore.Metadata(blockID)
	if !ok || !metadata.IsSolid() || metadata.OMRSI == nil || metadata.YMRSI == nil {
		return model.TipScoreLazy, false
	}
	if metadata.IsReferenced() {
		return model.TipScoreNonLazy, true
	}

	confirmedIndex := tp.blockStore.ConfirmedMilestoneIndex()
	if lagsBehind(metadata.YMRSI.Index, confirmedIndex, tp.ymrsiDelta) ||
		lagsBehind(metadata.OMRSI.Index, confirmedIndex, tp.belowMaxDepth) {
		return model.TipScoreLazy, true
	}
	if lagsBehind(metadata.OMRSI.Index, confirmedIndex, tp.omrsiDelta) {
		return model.TipScoreSemiLazy, true
	}
	return model.TipScoreNonLazy, true
}

// lagsBehind returns whether confirmedIndex is more than delta above index
func lagsBehind(index, confirmedIndex, delta externalapi.MilestoneIndex) bool {
	return confirmedIndex > index && confirmedIndex-index > delta
}
