package contractor

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
)

// chEdge is an edge of the remaining (uncontracted) graph during contraction.
type chEdge struct {
	to       datastructure.NodeID
	weight   datastructure.EdgeWeight
	shortcut bool
	via      datastructure.NodeID
}

type Metadata struct {
	MeanDegree     float64
	ShortcutsCount int64
	EdgeCount      int
	NodeCount      int
}

/*
ContractedGraph. contraction hierarchies preprocessing.
outEdges/inEdges cuma berisi edge antar node yang belum di kontraksi,
edge dari node yang sudah di kontraksi dipindah ke upwardEdges (disimpan di endpoint dengan rank lebih rendah).
*/
type ContractedGraph struct {
	Metadata Metadata

	outEdges          [][]chEdge
	inEdges           [][]chEdge
	rank              []int32
	contracted        []bool
	deletedNeighbours []int32

	upwardEdges []datastructure.ContractedEdge
	ready       bool
}

var maxPollFactorHeuristic = 5
var maxPollFactorContraction = 200

const minSettledNodes = 16

func NewContractedGraph(g *datastructure.Graph) *ContractedGraph {
	ch := &ContractedGraph{
		outEdges:          make([][]chEdge, g.NumNodes),
		inEdges:           make([][]chEdge, g.NumNodes),
		rank:              make([]int32, g.NumNodes),
		contracted:        make([]bool, g.NumNodes),
		deletedNeighbours: make([]int32, g.NumNodes),
		upwardEdges:       make([]datastructure.ContractedEdge, 0, len(g.Edges)),
	}

	log.Printf("intializing original osm graph...")

	for _, edge := range g.Edges {
		if edge.From == edge.To {
			continue
		}
		// parallel edge: simpan yang paling murah
		ch.addOrUpdateEdge(edge.From, edge.To, edge.Weight, false, datastructure.SpecialNodeID)
	}

	edgeCount := 0
	for _, out := range ch.outEdges {
		edgeCount += len(out)
	}
	ch.Metadata.EdgeCount = edgeCount
	ch.Metadata.NodeCount = g.NumNodes
	if g.NumNodes > 0 {
		ch.Metadata.MeanDegree = float64(edgeCount) / float64(g.NumNodes)
	}

	log.Printf("initializing osm graph done...")
	return ch
}

// Contraction contracts every node in lazy-updated priority order.
func (ch *ContractedGraph) Contraction() (err error) {
	st := time.Now()
	nq := datastructure.NewFibonacciHeap[datastructure.NodeID]()

	ch.UpdatePrioritiesOfRemainingNodes(nq)

	log.Printf("total nodes: %d", ch.Metadata.NodeCount)
	log.Printf("total edges: %d", ch.Metadata.EdgeCount)

	orderNum := int32(0)
	for nq.Size() != 0 {
		var polledItem *datastructure.Entry[datastructure.NodeID]
		polledItem, err = nq.ExtractMin()
		if err != nil {
			err = server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
			return
		}
		nodeID := polledItem.GetElem()

		// lazy update
		priority := ch.calculatePriority(nodeID)
		if nq.Size() > 0 && priority > nq.GetMinRank() {
			// current node importantnya lebih tinggi dari next pq item
			nq.Insert(nodeID, priority)
			continue
		}

		ch.rank[nodeID] = orderNum
		if err = ch.contractNode(nodeID); err != nil {
			err = server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
			return
		}
		orderNum++

		if (orderNum+1)%10000 == 0 {
			log.Printf("contracting node: %d...", orderNum+1)
		}
	}
	ch.ready = true

	log.Printf("total shortcuts: %d", ch.Metadata.ShortcutsCount)
	log.Printf("time for preprocessing contraction hierarchies: %v menit", time.Since(st).Minutes())
	return
}

func (ch *ContractedGraph) contractNode(nodeID datastructure.NodeID) error {
	if ch.contracted[nodeID] {
		return nil
	}
	degree, _, _, err := ch.findAndHandleShortcuts(nodeID, ch.addShortcut,
		int(ch.Metadata.MeanDegree*float64(maxPollFactorContraction)))
	if err != nil {
		return err
	}
	ch.Metadata.MeanDegree = (ch.Metadata.MeanDegree*2 + float64(degree)) / 3

	ch.moveToUpwardGraph(nodeID)
	ch.contracted[nodeID] = true
	return nil
}

/*
moveToUpwardGraph. semua neighbor nodeID yang tersisa pasti rank nya lebih tinggi,
jadi edge (nodeID, w) jadi forward edge di nodeID & edge (u, nodeID) jadi backward edge di nodeID.
*/
func (ch *ContractedGraph) moveToUpwardGraph(nodeID datastructure.NodeID) {
	for _, e := range ch.outEdges[nodeID] {
		ch.upwardEdges = append(ch.upwardEdges, datastructure.ContractedEdge{
			Source: nodeID,
			Edge:   datastructure.NewQueryEdge(e.to, e.weight, true, false, e.shortcut, e.via),
		})
		ch.inEdges[e.to] = removeEdgeTo(ch.inEdges[e.to], nodeID)
		ch.deletedNeighbours[e.to]++
	}
	for _, e := range ch.inEdges[nodeID] {
		ch.upwardEdges = append(ch.upwardEdges, datastructure.ContractedEdge{
			Source: nodeID,
			Edge:   datastructure.NewQueryEdge(e.to, e.weight, false, true, e.shortcut, e.via),
		})
		ch.outEdges[e.to] = removeEdgeTo(ch.outEdges[e.to], nodeID)
		ch.deletedNeighbours[e.to]++
	}
	ch.outEdges[nodeID] = nil
	ch.inEdges[nodeID] = nil
}

func removeEdgeTo(edges []chEdge, to datastructure.NodeID) []chEdge {
	for i := 0; i < len(edges); i++ {
		if edges[i].to == to {
			edges[i] = edges[len(edges)-1]
			edges = edges[:len(edges)-1]
			i--
		}
	}
	return edges
}

type shortcutHandler func(fromNodeID, toNodeID, viaNodeID datastructure.NodeID, weight datastructure.EdgeWeight)

/*
findAndHandleShortcuts , ketika mengontraksi node v, kita harus cari shortest path dari node u ke w yang meng ignore node v,
dimana u adalah node yang terhubung ke v dan edge (u,v) \in E, dan w adalah node yang terhubung dari v dan edge (v,w) \in E.
kalau tidak ada witness path u->w dengan cost <= c(u,v) + c(v,w), tambahkan shortcut edge (u,w).

return degree, jumlah shortcut, jumlah original edge yang diwakili shortcut.
*/
func (ch *ContractedGraph) findAndHandleShortcuts(nodeID datastructure.NodeID, handler shortcutHandler,
	maxSettledNodes int) (int, int, int, error) {
	degree := len(ch.inEdges[nodeID]) + len(ch.outEdges[nodeID])
	if maxSettledNodes < minSettledNodes {
		maxSettledNodes = minSettledNodes
	}
	shortcutCount := 0
	originalEdgesCount := 0

	var pOutMax datastructure.EdgeWeight
	for _, outEdge := range ch.outEdges[nodeID] {
		if outEdge.weight > pOutMax {
			pOutMax = outEdge.weight
		}
	}

	for _, inEdge := range ch.inEdges[nodeID] {
		fromNodeID := inEdge.to
		if fromNodeID == nodeID {
			return 0, 0, 0, fmt.Errorf(`unexpected loop-edge at node: %v `, nodeID)
		}

		// witness search sekali per incoming neighbor untuk semua outgoing neighbor
		witness := ch.dijkstraWitnessSearch(fromNodeID, nodeID, inEdge.weight+pOutMax, maxSettledNodes)

		for _, outEdge := range ch.outEdges[nodeID] {
			toNodeID := outEdge.to
			if toNodeID == fromNodeID {
				// gak perlu search untuk witness dari node balik ke node itu lagi
				continue
			}

			existingDirectWeight := inEdge.weight + outEdge.weight
			if d, ok := witness[toNodeID]; ok && d <= existingDirectWeight {
				// FOUND witness path, tidak perlu add shortcut
				continue
			}

			shortcutCount++
			originalEdgesCount += edgeOriginalCount(inEdge) + edgeOriginalCount(outEdge)
			handler(fromNodeID, toNodeID, nodeID, existingDirectWeight)
		}
	}
	return degree, shortcutCount, originalEdgesCount, nil
}

func edgeOriginalCount(e chEdge) int {
	if e.shortcut {
		return 2
	}
	return 1
}

func countShortcut(fromNodeID, toNodeID, viaNodeID datastructure.NodeID, weight datastructure.EdgeWeight) {
}

func (ch *ContractedGraph) addShortcut(fromNodeID, toNodeID, viaNodeID datastructure.NodeID, weight datastructure.EdgeWeight) {
	if ch.addOrUpdateEdge(fromNodeID, toNodeID, weight, true, viaNodeID) {
		ch.Metadata.ShortcutsCount++
	}
}

/*
addOrUpdateEdge, menambahkan edge (u,w). kalau edge (u,w) sudah ada & weight nya lebih besar, update weight nya.
return true kalau edge baru ditambahkan.
*/
func (ch *ContractedGraph) addOrUpdateEdge(fromNodeID, toNodeID datastructure.NodeID, weight datastructure.EdgeWeight,
	shortcut bool, via datastructure.NodeID) bool {
	for i, e := range ch.outEdges[fromNodeID] {
		if e.to != toNodeID {
			continue
		}
		if weight < e.weight {
			ch.outEdges[fromNodeID][i] = chEdge{to: toNodeID, weight: weight, shortcut: shortcut, via: via}
			for j, in := range ch.inEdges[toNodeID] {
				if in.to == fromNodeID {
					ch.inEdges[toNodeID][j] = chEdge{to: fromNodeID, weight: weight, shortcut: shortcut, via: via}
				}
			}
		}
		return false
	}

	ch.outEdges[fromNodeID] = append(ch.outEdges[fromNodeID], chEdge{to: toNodeID, weight: weight, shortcut: shortcut, via: via})
	ch.inEdges[toNodeID] = append(ch.inEdges[toNodeID], chEdge{to: fromNodeID, weight: weight, shortcut: shortcut, via: via})
	return true
}

// calculatePriority: 10 * edge difference + original edges of the shortcuts + deleted neighbours.
func (ch *ContractedGraph) calculatePriority(nodeID datastructure.NodeID) datastructure.EdgeWeight {
	degree, shortcutsCount, originalEdgesCount, _ := ch.findAndHandleShortcuts(nodeID, countShortcut,
		int(ch.Metadata.MeanDegree*float64(maxPollFactorHeuristic)))

	// |shortcuts(v)| − |{(u, v) | u uncontracted}| − |{(v, w) | w uncontracted}|
	edgeDifference := shortcutsCount - degree

	return datastructure.EdgeWeight(10*edgeDifference+originalEdgesCount) + ch.deletedNeighbours[nodeID]
}

func (ch *ContractedGraph) UpdatePrioritiesOfRemainingNodes(nq *datastructure.FibonacciHeap[datastructure.NodeID]) {
	for nodeID := range ch.outEdges {
		priority := ch.calculatePriority(datastructure.NodeID(nodeID))
		nq.Insert(datastructure.NodeID(nodeID), priority)

		if (nodeID+1)%10000 == 0 {
			log.Printf("updating priority of node: %d...", nodeID+1)
		}
	}
}

func (ch *ContractedGraph) IsChReady() bool {
	return ch.ready
}

func (ch *ContractedGraph) GetRank(nodeID datastructure.NodeID) int32 {
	return ch.rank[nodeID]
}

/*
QueryGraph. hasil kontraksi dalam bentuk static graph untuk query.
forward edge (v,w) & backward edge (v,w) dengan weight sama digabung jadi satu edge dengan dua flag.
*/
func (ch *ContractedGraph) QueryGraph() (*datastructure.QueryGraph, error) {
	if !ch.ready {
		return nil, server.NewErrorf(server.ErrInternalServerError, "contraction has not been run")
	}

	edges := make([]datastructure.ContractedEdge, len(ch.upwardEdges))
	copy(edges, ch.upwardEdges)
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Edge.Target != edges[j].Edge.Target {
			return edges[i].Edge.Target < edges[j].Edge.Target
		}
		return edges[i].Edge.Data.Distance < edges[j].Edge.Data.Distance
	})

	merged := make([]datastructure.ContractedEdge, 0, len(edges))
	for _, e := range edges {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.Source == e.Source && last.Edge.Target == e.Edge.Target &&
				last.Edge.Data.Distance == e.Edge.Data.Distance {
				last.Edge.Data.Forward = last.Edge.Data.Forward || e.Edge.Data.Forward
				last.Edge.Data.Backward = last.Edge.Data.Backward || e.Edge.Data.Backward
				continue
			}
		}
		merged = append(merged, e)
	}

	return datastructure.NewQueryGraph(ch.Metadata.NodeCount, merged, ch.rank), nil
}
